package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"

	"github.com/xiaot623/meetagent/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Dialect describes the differences between the supported SQL backends.
type Dialect struct {
	Driver       string // database/sql driver name
	Goose        string // goose dialect name
	Numbered     bool   // $1-style placeholders
	SingleConnIn func(dsn string) bool
}

var (
	// SQLite is served by mattn/go-sqlite3.
	SQLite = Dialect{
		Driver: "sqlite3",
		Goose:  "sqlite3",
		// For in-memory SQLite, multiple connections create separate databases.
		SingleConnIn: func(dsn string) bool {
			return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
		},
	}
	// Postgres is served by the pgx stdlib driver (Supabase compatible).
	Postgres = Dialect{
		Driver:   "pgx",
		Goose:    "postgres",
		Numbered: true,
	}
)

const meetingColumns = `id, title, datetime, duration_minutes, notes, participants, category,
	location, reminder_minutes, is_recurring, recurrence_pattern, created_at, updated_at`

// SQLStore implements Store on top of database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewSQLStore opens dsn with the dialect's driver and runs migrations.
func NewSQLStore(dialect Dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect.SingleConnIn != nil && dialect.SingleConnIn(dsn) {
		// Keep a single connection to avoid schema/data disappearing across goroutines.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLStore{db: db, dialect: dialect, now: time.Now}, nil
}

// NewSQLiteStore creates a new SQLite-backed store.
func NewSQLiteStore(dsn string) (*SQLStore, error) {
	return NewSQLStore(SQLite, dsn)
}

// NewPostgresStore creates a new Postgres-backed store.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	return NewSQLStore(Postgres, dsn)
}

func migrate(db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect.Goose); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders for dialects that number them.
func (s *SQLStore) rebind(query string) string {
	if !s.dialect.Numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) List(ctx context.Context) ([]domain.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+meetingColumns+` FROM meetings ORDER BY datetime ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()

	meetings := []domain.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, *m)
	}
	return meetings, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, id string) (*domain.Meeting, error) {
	return s.get(ctx, s.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) get(ctx context.Context, q queryer, id string) (*domain.Meeting, error) {
	row := q.QueryRowContext(ctx, s.rebind(`SELECT `+meetingColumns+` FROM meetings WHERE id = ?`), id)
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *SQLStore) Create(ctx context.Context, in domain.MeetingInput) (*domain.Meeting, error) {
	in.ApplyDefaults()
	participants, err := json.Marshal(in.Participants)
	if err != nil {
		return nil, fmt.Errorf("marshal participants: %w", err)
	}

	id := ulid.Make().String()
	now := formatTimestamp(s.now())
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO meetings (`+meetingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id, in.Title, in.Datetime, in.DurationMinutes, nullString(in.Notes), string(participants), in.Category,
		nullString(in.Location), in.ReminderMinutes, in.IsRecurring, nullString(in.RecurrencePattern), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert meeting: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Update(ctx context.Context, id string, u domain.MeetingUpdate) (*domain.Meeting, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	m, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	u.Apply(m)

	_, err = tx.ExecContext(ctx, s.rebind(`UPDATE meetings
		SET title = ?, datetime = ?, duration_minutes = ?, notes = ?, updated_at = ?
		WHERE id = ?`),
		m.Title, m.Datetime, m.DurationMinutes, nullString(m.Notes), formatTimestamp(s.now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update meeting: %w", err)
	}

	updated, err := s.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (s *SQLStore) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM meetings WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row scanner) (*domain.Meeting, error) {
	var (
		m                                domain.Meeting
		notes, location, pattern         sql.NullString
		participants, created, updatedAt string
	)
	err := row.Scan(&m.ID, &m.Title, &m.Datetime, &m.DurationMinutes, &notes, &participants, &m.Category,
		&location, &m.ReminderMinutes, &m.IsRecurring, &pattern, &created, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan meeting: %w", err)
	}

	m.Notes = stringPtr(notes)
	m.Location = stringPtr(location)
	m.RecurrencePattern = stringPtr(pattern)
	m.Participants = []string{}
	if participants != "" {
		if err := json.Unmarshal([]byte(participants), &m.Participants); err != nil {
			return nil, fmt.Errorf("decode participants: %w", err)
		}
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	m.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &m, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
