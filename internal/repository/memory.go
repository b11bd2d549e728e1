package repository

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/xiaot623/meetagent/internal/domain"
)

// MemoryStore keeps meetings in process memory, in insertion order.
// All access is serialized by a single lock.
type MemoryStore struct {
	mu       sync.RWMutex
	meetings []domain.Meeting
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) List(ctx context.Context) ([]domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Meeting, len(s.meetings))
	for i, m := range s.meetings {
		out[i] = clone(m)
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	m := clone(s.meetings[i])
	return &m, nil
}

func (s *MemoryStore) Create(ctx context.Context, in domain.MeetingInput) (*domain.Meeting, error) {
	in.ApplyDefaults()
	now := s.now().UTC()
	m := domain.Meeting{
		ID:                ulid.Make().String(),
		Title:             in.Title,
		Datetime:          in.Datetime,
		DurationMinutes:   in.DurationMinutes,
		Notes:             in.Notes,
		Participants:      append([]string{}, in.Participants...),
		Category:          in.Category,
		Location:          in.Location,
		ReminderMinutes:   in.ReminderMinutes,
		IsRecurring:       in.IsRecurring,
		RecurrencePattern: in.RecurrencePattern,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	s.mu.Lock()
	s.meetings = append(s.meetings, m)
	s.mu.Unlock()

	out := clone(m)
	return &out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, u domain.MeetingUpdate) (*domain.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	u.Apply(&s.meetings[i])
	s.meetings[i].UpdatedAt = s.now().UTC()
	out := clone(s.meetings[i])
	return &out, nil
}

func (s *MemoryStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.meetings = append(s.meetings[:i], s.meetings[i+1:]...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// indexOf must be called with the lock held.
func (s *MemoryStore) indexOf(id string) int {
	for i := range s.meetings {
		if s.meetings[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(m domain.Meeting) domain.Meeting {
	if m.Participants != nil {
		m.Participants = append([]string{}, m.Participants...)
	}
	return m
}
