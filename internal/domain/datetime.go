package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// localLayouts carry no zone and are read in the caller's default location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDatetime parses a meeting datetime into an absolute instant.
// Zoned forms (RFC 3339 and the ISO 8601 variants strfmt accepts) keep their offset;
// zoneless forms are interpreted in loc.
func ParseDatetime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("datetime is empty")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse("2006-01-02T15:04Z07:00", s); err == nil {
		return t, nil
	}
	dt, err := strfmt.ParseDateTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse datetime %q: %w", s, err)
	}
	return time.Time(dt), nil
}

// FormatDatetime renders an instant in the canonical stored form.
func FormatDatetime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(time.RFC3339)
}
