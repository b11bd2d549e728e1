package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const chatCompletionsPath = "/v1/chat/completions"

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	rest *resty.Client
}

// NewClient creates a client for baseURL. timeout bounds every request,
// including the time spent waiting for the model.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		rest.SetAuthToken(apiKey)
	}
	return &Client{rest: rest}
}

// ChatCompletionRequest is the body of a chat completion call.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

// ChatMessage is one message of the prompt or the reply.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the subset of the completion reply we read.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is one candidate reply.
type Choice struct {
	Index        int          `json:"index"`
	Message      *ChatMessage `json:"message,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// Usage reports token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Text returns the first choice's message content.
func (r *ChatCompletionResponse) Text() (string, error) {
	if r == nil || len(r.Choices) == 0 || r.Choices[0].Message == nil {
		return "", fmt.Errorf("completion returned no choices")
	}
	return r.Choices[0].Message.Content, nil
}

// APIError is the error object an OpenAI-compatible server returns.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// StatusError is returned for any non-2xx completion reply.
type StatusError struct {
	StatusCode int
	API        *APIError
	Body       string
}

func (e *StatusError) Error() string {
	if e.API != nil {
		return fmt.Sprintf("completion API error [%d]: %s (type: %s)", e.StatusCode, e.API.Message, e.API.Type)
	}
	return fmt.Sprintf("completion API error [%d]: %s", e.StatusCode, e.Body)
}

// CreateChatCompletion sends a non-streaming chat completion request.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	var out ChatCompletionResponse
	var env errorEnvelope

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&env).
		Post(chatCompletionsPath)
	if err != nil {
		return nil, fmt.Errorf("send completion request: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{StatusCode: resp.StatusCode(), API: env.Error, Body: resp.String()}
	}
	return &out, nil
}
