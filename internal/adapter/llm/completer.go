package llm

import (
	"context"
	"fmt"

	"github.com/xiaot623/meetagent/internal/domain"
)

// ChatCompleter implements Completer over a chat completion API.
type ChatCompleter struct {
	client      LLMClient
	model       string
	temperature float64
	system      string
}

// CompleterOption configures a ChatCompleter.
type CompleterOption func(*ChatCompleter)

// WithSystemPrompt prepends a system message to every request.
func WithSystemPrompt(prompt string) CompleterOption {
	return func(c *ChatCompleter) { c.system = prompt }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) CompleterOption {
	return func(c *ChatCompleter) { c.temperature = t }
}

// NewCompleter creates a completer that sends requests for model through client.
func NewCompleter(client LLMClient, model string, opts ...CompleterOption) *ChatCompleter {
	c := &ChatCompleter{client: client, model: model, temperature: 0.7}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends history followed by prompt as the newest user message.
func (c *ChatCompleter) Complete(ctx context.Context, prompt string, history []domain.ConversationMessage) (string, error) {
	messages := make([]ChatMessage, 0, len(history)+2)
	if c.system != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: c.system})
	}
	for _, msg := range history {
		role := string(msg.Role)
		if msg.Role != domain.RoleUser {
			role = string(domain.RoleAssistant)
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, ChatMessage{Role: string(domain.RoleUser), Content: prompt})

	temperature := c.temperature
	resp, err := c.client.CreateChatCompletion(ctx, &ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return resp.Text()
}
