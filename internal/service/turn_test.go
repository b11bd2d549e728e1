package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/meetagent/internal/domain"
	"github.com/xiaot623/meetagent/tests/helpers"
)

func TestHandleTurnScheduleAcrossTwoTurns(t *testing.T) {
	ctx := context.Background()
	store := helpers.NewCountingStore(nil)
	tomorrow := time.Now().In(ist).AddDate(0, 0, 1)
	at := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 9, 0, 0, 0, ist).Format(time.RFC3339)

	extract := &scriptedCompleter{replies: []string{
		"Sure! What should the meeting be called, and when is it?",
		fmt.Sprintf(`{"action":"create","title":"Standup","datetime":%q,"duration_minutes":15}`, at),
	}}
	svc := newTestService(t, store, extract, nil)

	var history []domain.ConversationMessage
	first := svc.HandleTurn(ctx, domain.TurnRequest{Message: "Schedule a meeting", ConversationHistory: history})
	assert.Equal(t, "Sure! What should the meeting be called, and when is it?", first.Response)
	assert.Equal(t, domain.CollectingMeeting, first.ConversationState.Collecting)
	assert.Zero(t, store.Mutations())

	history = append(history,
		domain.ConversationMessage{Role: domain.RoleUser, Content: "Schedule a meeting"},
		domain.ConversationMessage{Role: domain.RoleAssistant, Content: first.Response},
	)
	second := svc.HandleTurn(ctx, domain.TurnRequest{
		Message:             "Schedule it as Standup tomorrow at 9 AM for 15 minutes",
		ConversationHistory: history,
	})
	assert.Equal(t, `Meeting "Standup" has been scheduled successfully!`, second.Response)
	assert.Equal(t, domain.ConversationState{}, second.ConversationState)
	assert.Equal(t, 1, store.Calls("create"))

	require.Len(t, extract.prompts, 2)
	assert.Contains(t, extract.prompts[1], "assistant: Sure! What should the meeting be called, and when is it?")

	meetings, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, at, meetings[0].Datetime)
}

func TestHandleTurnConflictAwaitsConfirmation(t *testing.T) {
	store := helpers.NewCountingStore(nil)
	store.Seed(t, meetingAt("Team Sync", "2025-01-15T10:00:00+05:30", 60))
	extract := &scriptedCompleter{replies: []string{
		`{"action":"create","title":"Budget","datetime":"2025-01-15T10:30:00+05:30","duration_minutes":30}`,
	}}
	svc := newTestService(t, store, extract, nil)

	resp := svc.HandleTurn(context.Background(), domain.TurnRequest{Message: "schedule budget at 10:30 tomorrow"})
	assert.Contains(t, resp.Response, `"Team Sync"`)
	assert.Equal(t, domain.CollectingMeeting, resp.ConversationState.Collecting)
	assert.Zero(t, store.Mutations())
}

func TestHandleTurnHugeDurationNeverWrites(t *testing.T) {
	for _, minutes := range []string{"200000000000", "20000"} {
		t.Run(minutes, func(t *testing.T) {
			store := helpers.NewCountingStore(nil)
			store.Seed(t, meetingAt("Team Sync", "2025-01-15T10:00:00+05:30", 60))
			extract := &scriptedCompleter{replies: []string{
				`{"action":"create","title":"Forever","datetime":"2025-01-15T09:00:00+05:30","duration_minutes":` + minutes + `}`,
			}}
			svc := newTestService(t, store, extract, nil)

			resp := svc.HandleTurn(context.Background(), domain.TurnRequest{Message: "schedule Forever at 9"})
			assert.NotContains(t, resp.Response, "scheduled successfully")
			assert.Equal(t, domain.CollectingMeeting, resp.ConversationState.Collecting)
			assert.Zero(t, store.Mutations())
		})
	}
}

func TestHandleTurnList(t *testing.T) {
	store := helpers.NewCountingStore(nil)
	store.Seed(t, meetingAt("Team Sync", "2025-01-15T10:00:00+05:30", 30))
	extract := &scriptedCompleter{}
	svc := newTestService(t, store, extract, nil)

	resp := svc.HandleTurn(context.Background(), domain.TurnRequest{Message: "show my calendar and schedule a call"})
	assert.Equal(t, "You have 1 upcoming meeting:\n⤷ Team Sync – January 15, 10:00 AM IST (30 mins)\n\nAnything you'd like to reschedule?", resp.Response)
	assert.Equal(t, domain.CollectingNone, resp.ConversationState.Collecting)
	assert.Zero(t, extract.calls())
}

func TestHandleTurnIncompleteSetsCollecting(t *testing.T) {
	tests := []struct {
		message string
		want    domain.Collecting
	}{
		{"move my standup", domain.CollectingReschedule},
		{"cancel a meeting", domain.CollectingDelete},
		{"find a meeting", domain.CollectingSearch},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			extract := &scriptedCompleter{replies: []string{"Which one?"}}
			svc := newTestService(t, helpers.NewCountingStore(nil), extract, nil)
			resp := svc.HandleTurn(context.Background(), domain.TurnRequest{Message: tt.message})
			assert.Equal(t, "Which one?", resp.Response)
			assert.Equal(t, tt.want, resp.ConversationState.Collecting)
		})
	}
}

func TestHandleTurnDeleteUnknown(t *testing.T) {
	store := helpers.NewCountingStore(nil)
	store.Seed(t, meetingAt("Team Sync", "2025-01-15T10:00:00+05:30", 30))
	extract := &scriptedCompleter{replies: []string{`{"action":"delete","meetingId":"offsite"}`}}
	svc := newTestService(t, store, extract, nil)

	resp := svc.HandleTurn(context.Background(), domain.TurnRequest{Message: "cancel the offsite"})
	assert.Contains(t, resp.Response, `couldn't find a meeting matching "offsite"`)
	assert.Equal(t, domain.CollectingDelete, resp.ConversationState.Collecting)
	assert.Zero(t, store.Mutations())
}

func TestHandleTurnGeneral(t *testing.T) {
	store := helpers.NewCountingStore(nil)
	store.Seed(t, meetingAt("Team Sync", "2025-01-15T10:00:00+05:30", 30))
	chat := &scriptedCompleter{replies: []string{"  Hi! I can help with your meetings.  "}}
	history := []domain.ConversationMessage{{Role: domain.RoleUser, Content: "hey"}}
	svc := newTestService(t, store, nil, chat)

	resp := svc.HandleTurn(context.Background(), domain.TurnRequest{Message: "hello there", ConversationHistory: history})
	assert.Equal(t, "Hi! I can help with your meetings.", resp.Response)
	assert.Equal(t, domain.ConversationState{}, resp.ConversationState)

	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "hello there\n\nCurrent meetings:\n")
	assert.Contains(t, chat.prompts[0], "Team Sync")
	assert.Equal(t, history, chat.history[0])
}

type failingStore struct {
	*helpers.CountingStore
}

func (failingStore) List(ctx context.Context) ([]domain.Meeting, error) {
	return nil, errors.New("connection refused")
}

func TestHandleTurnApologizes(t *testing.T) {
	t.Run("completion failure", func(t *testing.T) {
		extract := &scriptedCompleter{err: errors.New("timeout")}
		svc := newTestService(t, helpers.NewCountingStore(nil), extract, nil)
		resp := svc.HandleTurn(context.Background(), domain.TurnRequest{Message: "schedule a meeting"})
		assert.Equal(t, domain.TurnResponse{Response: ApologyText}, resp)
	})

	t.Run("general failure", func(t *testing.T) {
		chat := &scriptedCompleter{err: errors.New("rate limited")}
		svc := newTestService(t, helpers.NewCountingStore(nil), nil, chat)
		resp := svc.HandleTurn(context.Background(), domain.TurnRequest{Message: "how are you"})
		assert.Equal(t, ApologyText, resp.Response)
		assert.NotContains(t, resp.Response, "rate limited")
	})

	t.Run("store failure", func(t *testing.T) {
		svc := newTestService(t, failingStore{helpers.NewCountingStore(nil)}, nil, nil)
		resp := svc.HandleTurn(context.Background(), domain.TurnRequest{Message: "list"})
		assert.Equal(t, domain.TurnResponse{Response: ApologyText}, resp)
	})
}
