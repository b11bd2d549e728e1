// Package repository defines the meeting store interface and its implementations.
package repository

import (
	"context"
	"errors"

	"github.com/xiaot623/meetagent/internal/domain"
)

// ErrNotFound is returned when a meeting id does not exist.
var ErrNotFound = errors.New("meeting not found")

// Store defines the interface for meeting persistence.
type Store interface {
	// List returns every meeting in store order.
	List(ctx context.Context) ([]domain.Meeting, error)
	Get(ctx context.Context, id string) (*domain.Meeting, error)
	// Create assigns the id and timestamps and persists the meeting.
	Create(ctx context.Context, in domain.MeetingInput) (*domain.Meeting, error)
	Update(ctx context.Context, id string, u domain.MeetingUpdate) (*domain.Meeting, error)
	Remove(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}
