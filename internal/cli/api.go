package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/xiaot623/meetagent/internal/domain"
)

// APIClient calls the meeting agent's HTTP API.
type APIClient struct {
	client *resty.Client
}

// NewAPIClient creates a client for the server at base.
func NewAPIClient(base string) *APIClient {
	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)
	return &APIClient{client: c}
}

type apiError struct {
	Error string `json:"error"`
}

// Turn sends one conversation turn to POST /api/chat.
func (a *APIClient) Turn(ctx context.Context, req domain.TurnRequest) (domain.TurnResponse, error) {
	var out domain.TurnResponse
	var apiErr apiError
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(&req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/chat")
	if err != nil {
		return domain.TurnResponse{}, fmt.Errorf("chat request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.TurnResponse{}, fmt.Errorf("chat status %d: %s", resp.StatusCode(), apiErr.Error)
	}
	return out, nil
}

// ListMeetings fetches GET /api/meetings.
func (a *APIClient) ListMeetings(ctx context.Context) ([]domain.Meeting, error) {
	var out []domain.Meeting
	var apiErr apiError
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/api/meetings")
	if err != nil {
		return nil, fmt.Errorf("list request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("list status %d: %s", resp.StatusCode(), apiErr.Error)
	}
	return out, nil
}
