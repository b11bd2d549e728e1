package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/meetagent/internal/domain"
	"github.com/xiaot623/meetagent/internal/repository"
	"github.com/xiaot623/meetagent/policy"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

// scriptedCompleter replays canned replies and records every prompt.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
	history [][]domain.ConversationMessage
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt string, history []domain.ConversationMessage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	c.history = append(c.history, history)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", nil
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func (c *scriptedCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

func newPolicy(t *testing.T) *policy.Engine {
	t.Helper()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)
	return engine
}

func newTestService(t *testing.T, store repository.Store, extract, chat *scriptedCompleter) *Service {
	t.Helper()
	if extract == nil {
		extract = &scriptedCompleter{}
	}
	if chat == nil {
		chat = &scriptedCompleter{}
	}
	return New(store, extract, chat, newPolicy(t), ist, zerolog.Nop())
}

func meetingAt(title, datetime string, minutes int) domain.MeetingInput {
	return domain.MeetingInput{Title: title, Datetime: datetime, DurationMinutes: minutes}
}
