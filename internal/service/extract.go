package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xiaot623/meetagent/internal/adapter/llm"
	"github.com/xiaot623/meetagent/internal/domain"
)

// Extraction is the outcome of one slot-filling turn: Complete or Incomplete.
type Extraction interface {
	isExtraction()
}

// Complete carries a fully specified action ready for the dispatcher.
type Complete struct {
	Tool string
	Args json.RawMessage
}

// Incomplete carries the model's follow-up question, passed to the user as is.
type Incomplete struct {
	FollowUp string
}

func (Complete) isExtraction()   {}
func (Incomplete) isExtraction() {}

// FlexInt decodes from a JSON number or a numeric string within int32 range.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("%s is not a whole number", b)
	}
	if math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("%s is out of range", b)
	}
	*n = FlexInt(f)
	return nil
}

// CreateArgs are the arguments of create_meeting.
type CreateArgs struct {
	Title           string   `json:"title"`
	Datetime        string   `json:"datetime"`
	DurationMinutes FlexInt  `json:"duration_minutes"`
	Notes           *string  `json:"notes,omitempty"`
	Participants    []string `json:"participants,omitempty"`
	Category        string   `json:"category,omitempty"`
	Location        *string  `json:"location,omitempty"`
	ReminderMinutes FlexInt  `json:"reminder_minutes,omitempty"`
	// Confirmed is set once the user has accepted booking over an overlap.
	Confirmed bool `json:"confirmed,omitempty"`
}

// Input converts the arguments into a store input.
func (a CreateArgs) Input() domain.MeetingInput {
	return domain.MeetingInput{
		Title:           strings.TrimSpace(a.Title),
		Datetime:        strings.TrimSpace(a.Datetime),
		DurationMinutes: int(a.DurationMinutes),
		Notes:           a.Notes,
		Participants:    a.Participants,
		Category:        a.Category,
		Location:        a.Location,
		ReminderMinutes: int(a.ReminderMinutes),
	}
}

// UpdateArgs are the arguments of update_meeting.
type UpdateArgs struct {
	MeetingID   string `json:"meetingId"`
	NewDatetime string `json:"newDatetime"`
}

// DeleteArgs are the arguments of delete_meeting.
type DeleteArgs struct {
	MeetingID string `json:"meetingId"`
}

// SearchArgs are the arguments of search_meetings.
type SearchArgs struct {
	Query string `json:"query"`
}

type extractionSpec struct {
	tool     string
	required []string
	decode   func([]byte) (any, error)
}

var extractionSpecs = map[domain.Intent]extractionSpec{
	domain.IntentSchedule: {
		tool:     domain.ToolCreateMeeting,
		required: []string{"title", "datetime", "duration_minutes"},
		decode:   decodeInto[CreateArgs],
	},
	domain.IntentReschedule: {
		tool:     domain.ToolUpdateMeeting,
		required: []string{"meetingId", "newDatetime"},
		decode:   decodeInto[UpdateArgs],
	},
	domain.IntentDelete: {
		tool:     domain.ToolDeleteMeeting,
		required: []string{"meetingId"},
		decode:   decodeInto[DeleteArgs],
	},
	domain.IntentSearch: {
		tool:     domain.ToolSearchMeetings,
		required: []string{"query"},
		decode:   decodeInto[SearchArgs],
	},
}

func decodeInto[T any](raw []byte) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Extractor drives the single completion call of a slot-filling turn.
type Extractor struct {
	completer llm.Completer
	loc       *time.Location
	now       func() time.Time
}

// NewExtractor creates an extractor that asks completer and reads times in loc.
func NewExtractor(completer llm.Completer, loc *time.Location) *Extractor {
	return &Extractor{completer: completer, loc: loc, now: time.Now}
}

// Extract asks the completion service for the structured action behind
// utterance. Unusable replies become Incomplete; only a failed completion
// call is returned as an error.
func (e *Extractor) Extract(ctx context.Context, intent domain.Intent, utterance string, history []domain.ConversationMessage, meetings []domain.Meeting) (Extraction, error) {
	rule, ok := extractionSpecs[intent]
	if !ok {
		return nil, fmt.Errorf("intent %q needs no extraction", intent)
	}

	now := e.now().In(e.loc)
	prompt, err := buildPrompt(intent, promptData{
		Now:      now.Format("Monday, January 2, 2006 3:04 PM MST"),
		Zone:     zoneLabel(now),
		Input:    utterance,
		History:  history,
		Meetings: meetingsJSON(meetings),
	})
	if err != nil {
		return nil, err
	}

	// History is already part of the prompt.
	reply, err := e.completer.Complete(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", intent, err)
	}

	args, ok := parseArgs(reply, rule)
	if !ok {
		return Incomplete{FollowUp: strings.TrimSpace(reply)}, nil
	}
	return Complete{Tool: rule.tool, Args: args}, nil
}

// parseArgs pulls the JSON object out of reply, checks the required keys and
// re-encodes it in canonical form.
func parseArgs(reply string, rule extractionSpec) (json.RawMessage, bool) {
	span, ok := largestJSONObject(reply)
	if !ok {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return nil, false
	}
	for _, key := range rule.required {
		if !present(fields[key]) {
			return nil, false
		}
	}

	args, err := rule.decode([]byte(span))
	if err != nil {
		return nil, false
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// present reports whether a decoded value is neither null nor a blank string.
func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		return strings.TrimSpace(s) != ""
	}
	return true
}
