// Package llm provides an abstraction for LLM API clients and the completion
// service the conversation core talks to.
package llm

import (
	"context"

	"github.com/xiaot623/meetagent/internal/domain"
)

// LLMClient defines the interface for OpenAI-compatible chat completion APIs.
type LLMClient interface {
	// CreateChatCompletion sends a chat completion request (non-streaming).
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
}

// Completer turns a prompt plus prior conversation into free text. The reply
// carries no structural guarantee.
type Completer interface {
	Complete(ctx context.Context, prompt string, history []domain.ConversationMessage) (string, error)
}

// Ensure implementations satisfy their interfaces.
var (
	_ LLMClient = (*Client)(nil)
	_ LLMClient = (*MockClient)(nil)
	_ Completer = (*ChatCompleter)(nil)
)
