package repository

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/meetagent/internal/config"
	"github.com/xiaot623/meetagent/internal/domain"
)

func newTestSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// backends returns every store the contract tests run against. Postgres joins
// when MEETAGENT_TEST_POSTGRES_DSN points at a scratch database.
func backends(t *testing.T) map[string]func(t *testing.T) Store {
	b := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store { return newTestSQLiteStore(t) },
	}
	if dsn := os.Getenv("MEETAGENT_TEST_POSTGRES_DSN"); dsn != "" {
		b["postgres"] = func(t *testing.T) Store {
			s, err := NewPostgresStore(dsn)
			require.NoError(t, err)
			_, err = s.db.Exec(`DELETE FROM meetings`)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}
	}
	return b
}

func strPtr(s string) *string { return &s }

func TestStoreContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			created, err := store.Create(ctx, domain.MeetingInput{
				Title:           "Team Sync",
				Datetime:        "2026-10-19T10:00:00+05:30",
				DurationMinutes: 60,
				Notes:           strPtr("weekly"),
				Participants:    []string{"Asha", "Ravi"},
			})
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.Equal(t, "Team Sync", created.Title)
			assert.Equal(t, domain.DefaultCategory, created.Category)
			assert.Equal(t, domain.DefaultReminderMinutes, created.ReminderMinutes)
			assert.Equal(t, []string{"Asha", "Ravi"}, created.Participants)
			require.NotNil(t, created.Notes)
			assert.Equal(t, "weekly", *created.Notes)
			assert.False(t, created.CreatedAt.IsZero())
			assert.Nil(t, created.Location)

			got, err := store.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Title, got.Title)

			when := "2026-10-19T12:00:00+05:30"
			updated, err := store.Update(ctx, created.ID, domain.MeetingUpdate{Datetime: &when})
			require.NoError(t, err)
			assert.Equal(t, when, updated.Datetime)
			assert.Equal(t, "Team Sync", updated.Title)
			assert.Equal(t, 60, updated.DurationMinutes)
			require.NotNil(t, updated.Notes)
			assert.Equal(t, "weekly", *updated.Notes)

			cleared, err := store.Update(ctx, created.ID, domain.MeetingUpdate{ClearNotes: true})
			require.NoError(t, err)
			assert.Nil(t, cleared.Notes)
			got, err = store.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Nil(t, got.Notes)

			list, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, when, list[0].Datetime)

			require.NoError(t, store.Remove(ctx, created.ID))
			list, err = store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			when := "2026-10-19T12:00:00+05:30"
			_, err = store.Update(ctx, "missing", domain.MeetingUpdate{Datetime: &when})
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, store.Remove(ctx, "missing"), ErrNotFound)
		})
	}
}

func TestSQLiteStoreListsByDatetime(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	for _, in := range []domain.MeetingInput{
		{Title: "Late", Datetime: "2026-10-19T15:00:00+05:30", DurationMinutes: 30},
		{Title: "Early", Datetime: "2026-10-19T09:00:00+05:30", DurationMinutes: 30},
	} {
		_, err := store.Create(ctx, in)
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Early", list[0].Title)
	assert.Equal(t, "Late", list[1].Title)
}

func TestMemoryStoreKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, title := range []string{"Late", "Early"} {
		_, err := store.Create(ctx, domain.MeetingInput{Title: title, Datetime: "2026-10-19T09:00:00+05:30", DurationMinutes: 30})
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Late", list[0].Title)
	assert.Equal(t, "Early", list[1].Title)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	created, err := store.Create(ctx, domain.MeetingInput{Title: "Sync", Datetime: "2026-10-19T09:00:00+05:30", DurationMinutes: 30, Participants: []string{"a"}})
	require.NoError(t, err)

	created.Participants[0] = "mutated"
	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, list[0].Participants)
}

func TestMemoryStoreConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create(ctx, domain.MeetingInput{Title: "Sync", Datetime: "2026-10-19T09:00:00+05:30", DurationMinutes: 30})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: Postgres}
	assert.Equal(t, "SELECT * FROM meetings WHERE id = $1 AND title = $2", pg.rebind("SELECT * FROM meetings WHERE id = ? AND title = ?"))

	lite := &SQLStore{dialect: SQLite}
	assert.Equal(t, "WHERE id = ?", lite.rebind("WHERE id = ?"))
}

func TestOpenSelectsBackend(t *testing.T) {
	store, err := Open(&config.Config{DatabaseDriver: config.DriverMemory}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = Open(&config.Config{DatabaseDriver: config.DriverSQLite, DatabaseURL: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &SQLStore{}, store)
}
