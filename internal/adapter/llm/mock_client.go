package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient stands in for the completion API. Scripted replies are
// returned in order; once they run out it echoes the last user message.
type MockClient struct {
	mu        sync.Mutex
	responses []string
	requests  []ChatCompletionRequest
	err       error
}

// NewMockClient returns a mock that answers with responses in order.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{responses: responses}
}

// FailWith makes every subsequent call return err.
func (m *MockClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Requests returns a copy of the requests received so far.
func (m *MockClient) Requests() []ChatCompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChatCompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CreateChatCompletion returns the next scripted reply or a generated one.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.requests = append(m.requests, *req)
	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return nil, err
	}
	var content string
	if len(m.responses) > 0 {
		content = m.responses[0]
		m.responses = m.responses[1:]
	} else {
		content = echo(req)
	}
	m.mu.Unlock()

	return &ChatCompletionResponse{
		ID:    fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Model: req.Model,
		Choices: []Choice{{
			Message:      &ChatMessage{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
	}, nil
}

// echo answers with the last user message so unscripted conversations stay
// readable in development.
func echo(req *ChatCompletionRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role != "user" {
			continue
		}
		text := req.Messages[i].Content
		if len(text) > 100 {
			text = text[:100] + "..."
		}
		return fmt.Sprintf("[MOCK] Received your message: %q. Could you tell me a little more?", text)
	}
	return "[MOCK] Nothing to answer yet."
}
