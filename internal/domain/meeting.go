// Package domain defines the core domain models for the meeting agent.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultCategory is applied when a meeting is created without a category.
	DefaultCategory = "other"
	// DefaultReminderMinutes is applied when a meeting is created without a reminder.
	DefaultReminderMinutes = 15
	// MaxDurationMinutes caps a meeting at seven days.
	MaxDurationMinutes = 7 * 24 * 60
)

// ValidateDuration checks that minutes is a usable meeting length.
func ValidateDuration(minutes int) error {
	switch {
	case minutes <= 0:
		return fmt.Errorf("duration_minutes must be positive")
	case minutes > MaxDurationMinutes:
		return fmt.Errorf("duration_minutes must be at most %d", MaxDurationMinutes)
	}
	return nil
}

// Meeting is a calendar meeting as held by the store.
type Meeting struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Datetime          string    `json:"datetime"`
	DurationMinutes   int       `json:"duration_minutes"`
	Notes             *string   `json:"notes"`
	Participants      []string  `json:"participants"`
	Category          string    `json:"category"`
	Location          *string   `json:"location"`
	ReminderMinutes   int       `json:"reminder_minutes"`
	IsRecurring       bool      `json:"is_recurring"`
	RecurrencePattern *string   `json:"recurrence_pattern"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Start parses the stored datetime. Datetimes without a zone are read in loc.
func (m Meeting) Start(loc *time.Location) (time.Time, error) {
	return ParseDatetime(m.Datetime, loc)
}

// Window returns the meeting's [start, end) interval.
func (m Meeting) Window(loc *time.Location) (Window, error) {
	start, err := m.Start(loc)
	if err != nil {
		return Window{}, err
	}
	if m.DurationMinutes > MaxDurationMinutes {
		return Window{}, fmt.Errorf("meeting %s: duration %d out of range", m.ID, m.DurationMinutes)
	}
	return Window{Start: start, End: start.Add(time.Duration(m.DurationMinutes) * time.Minute)}, nil
}

// NotesText returns the notes or an empty string.
func (m Meeting) NotesText() string {
	if m.Notes == nil {
		return ""
	}
	return *m.Notes
}

// Window is a half-open time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two windows share any instant. Touching windows do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// MeetingInput holds the fields accepted when creating a meeting.
type MeetingInput struct {
	Title             string   `json:"title"`
	Datetime          string   `json:"datetime"`
	DurationMinutes   int      `json:"duration_minutes"`
	Notes             *string  `json:"notes,omitempty"`
	Participants      []string `json:"participants,omitempty"`
	Category          string   `json:"category,omitempty"`
	Location          *string  `json:"location,omitempty"`
	ReminderMinutes   int      `json:"reminder_minutes,omitempty"`
	IsRecurring       bool     `json:"is_recurring,omitempty"`
	RecurrencePattern *string  `json:"recurrence_pattern,omitempty"`
}

// Validate checks the invariants a meeting must satisfy before it is persisted.
func (in MeetingInput) Validate(loc *time.Location) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if err := ValidateDuration(in.DurationMinutes); err != nil {
		return err
	}
	if _, err := ParseDatetime(in.Datetime, loc); err != nil {
		return err
	}
	return nil
}

// ApplyDefaults fills in the optional fields the store defaults on create.
func (in *MeetingInput) ApplyDefaults() {
	if in.Participants == nil {
		in.Participants = []string{}
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	if in.ReminderMinutes == 0 {
		in.ReminderMinutes = DefaultReminderMinutes
	}
}

// MeetingUpdate is a partial update; nil fields are left untouched.
// ClearNotes is set when the body sends "notes": null.
type MeetingUpdate struct {
	Title           *string `json:"title,omitempty"`
	Datetime        *string `json:"datetime,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	ClearNotes      bool    `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler, telling an explicit null for
// notes apart from an absent key.
func (u *MeetingUpdate) UnmarshalJSON(b []byte) error {
	type plain MeetingUpdate
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	if raw, ok := keys["notes"]; ok && strings.TrimSpace(string(raw)) == "null" {
		p.ClearNotes = true
	}
	*u = MeetingUpdate(p)
	return nil
}

// Empty reports whether the update changes nothing.
func (u MeetingUpdate) Empty() bool {
	return u.Title == nil && u.Datetime == nil && u.DurationMinutes == nil && u.Notes == nil && !u.ClearNotes
}

// Apply copies the set fields onto m.
func (u MeetingUpdate) Apply(m *Meeting) {
	if u.Title != nil {
		m.Title = *u.Title
	}
	if u.Datetime != nil {
		m.Datetime = *u.Datetime
	}
	if u.DurationMinutes != nil {
		m.DurationMinutes = *u.DurationMinutes
	}
	switch {
	case u.Notes != nil:
		m.Notes = u.Notes
	case u.ClearNotes:
		m.Notes = nil
	}
}
