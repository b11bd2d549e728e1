package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xiaot623/meetagent/internal/domain"
)

const (
	noMeetingsText = "You have no upcoming meetings."
	// spokenLayout reads as "October 19, 9:00 AM IST".
	spokenLayout = "January 2, 3:04 PM MST"
)

// Formatter renders meetings as speech-friendly text in a fixed timezone.
type Formatter struct {
	loc *time.Location
}

// NewFormatter creates a formatter that localizes to loc.
func NewFormatter(loc *time.Location) *Formatter {
	return &Formatter{loc: loc}
}

// FormatList renders meetings in the order given.
func (f *Formatter) FormatList(meetings []domain.Meeting) string {
	if len(meetings) == 0 {
		return noMeetingsText
	}

	noun := "meeting"
	if len(meetings) > 1 {
		noun = "meetings"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d upcoming %s:", len(meetings), noun)
	for _, m := range meetings {
		b.WriteString("\n")
		b.WriteString(f.FormatMeeting(m))
	}
	return b.String()
}

// FormatMeeting renders one meeting line. An unreadable datetime is printed as stored.
func (f *Formatter) FormatMeeting(m domain.Meeting) string {
	when := m.Datetime
	if start, err := m.Start(f.loc); err == nil {
		when = start.In(f.loc).Format(spokenLayout)
	}
	return fmt.Sprintf("⤷ %s – %s (%d mins)", m.Title, when, m.DurationMinutes)
}

// MeetingsContext renders the meeting set as a prompt context block.
func (f *Formatter) MeetingsContext(meetings []domain.Meeting) string {
	if len(meetings) == 0 {
		return "\n\nNo meetings scheduled yet."
	}
	return "\n\nCurrent meetings:\n" + meetingsJSON(meetings)
}

func meetingsJSON(meetings []domain.Meeting) string {
	if meetings == nil {
		meetings = []domain.Meeting{}
	}
	raw, err := json.MarshalIndent(meetings, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(raw)
}
