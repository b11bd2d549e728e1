package helpers

import (
	"context"
	"sync"
	"testing"

	"github.com/xiaot623/meetagent/internal/domain"
	"github.com/xiaot623/meetagent/internal/repository"
)

func NewTestSQLiteStore(t *testing.T) *repository.SQLStore {
	t.Helper()

	s, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// CountingStore wraps a Store and counts calls per operation.
type CountingStore struct {
	repository.Store

	mu    sync.Mutex
	calls map[string]int
}

// NewCountingStore wraps inner, or a fresh memory store when inner is nil.
func NewCountingStore(inner repository.Store) *CountingStore {
	if inner == nil {
		inner = repository.NewMemoryStore()
	}
	return &CountingStore{Store: inner, calls: make(map[string]int)}
}

// Calls returns how many times op was invoked.
func (s *CountingStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Mutations returns the number of create, update and remove calls.
func (s *CountingStore) Mutations() int {
	return s.Calls("create") + s.Calls("update") + s.Calls("remove")
}

// Reset clears the counters.
func (s *CountingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

func (s *CountingStore) inc(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *CountingStore) List(ctx context.Context) ([]domain.Meeting, error) {
	s.inc("list")
	return s.Store.List(ctx)
}

func (s *CountingStore) Create(ctx context.Context, in domain.MeetingInput) (*domain.Meeting, error) {
	s.inc("create")
	return s.Store.Create(ctx, in)
}

func (s *CountingStore) Update(ctx context.Context, id string, u domain.MeetingUpdate) (*domain.Meeting, error) {
	s.inc("update")
	return s.Store.Update(ctx, id, u)
}

func (s *CountingStore) Remove(ctx context.Context, id string) error {
	s.inc("remove")
	return s.Store.Remove(ctx, id)
}

// Seed creates meetings directly in the wrapped store without counting them.
func (s *CountingStore) Seed(t *testing.T, inputs ...domain.MeetingInput) []domain.Meeting {
	t.Helper()
	out := make([]domain.Meeting, 0, len(inputs))
	for _, in := range inputs {
		m, err := s.Store.Create(context.Background(), in)
		if err != nil {
			t.Fatalf("seed meeting %q: %v", in.Title, err)
		}
		out = append(out, *m)
	}
	return out
}
