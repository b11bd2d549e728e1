package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/meetagent/internal/domain"
)

func TestLargestJSONObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"none", "What time works for you?", "", false},
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"wrapped in prose", "Sure! Here you go:\n```json\n{\"a\": {\"b\": 2}}\n```\nAnything else?", `{"a": {"b": 2}}`, true},
		{"largest of two", `{"x":1} and {"title":"Standup","notes":"long"}`, `{"title":"Standup","notes":"long"}`, true},
		{"braces in strings", `{"notes":"use } and { freely"}`, `{"notes":"use } and { freely"}`, true},
		{"escaped quote", `{"notes":"say \"}\" twice"}`, `{"notes":"say \"}\" twice"}`, true},
		{"unbalanced", `{"a": {"b": 1}`, `{"b": 1}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := largestJSONObject(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlexInt(t *testing.T) {
	var args CreateArgs
	require.NoError(t, json.Unmarshal([]byte(`{"duration_minutes":"45"}`), &args))
	assert.Equal(t, FlexInt(45), args.DurationMinutes)

	require.NoError(t, json.Unmarshal([]byte(`{"duration_minutes":30.0}`), &args))
	assert.Equal(t, FlexInt(30), args.DurationMinutes)

	assert.Error(t, json.Unmarshal([]byte(`{"duration_minutes":"half an hour"}`), &args))
	assert.Error(t, json.Unmarshal([]byte(`{"duration_minutes":12.5}`), &args))
	assert.Error(t, json.Unmarshal([]byte(`{"duration_minutes":200000000000}`), &args))
	assert.Error(t, json.Unmarshal([]byte(`{"duration_minutes":"-1e12"}`), &args))
}

func newTestExtractor(c *scriptedCompleter) *Extractor {
	e := NewExtractor(c, ist)
	e.now = func() time.Time { return time.Date(2025, 1, 14, 18, 0, 0, 0, ist) }
	return e
}

func TestExtractComplete(t *testing.T) {
	c := &scriptedCompleter{replies: []string{
		"Great, booking it.\n" + `{"action":"create","title":"Standup","datetime":"2025-01-15T09:00:00+05:30","duration_minutes":"15"}`,
	}}
	history := []domain.ConversationMessage{
		{Role: domain.RoleUser, Content: "Schedule a meeting"},
		{Role: domain.RoleAssistant, Content: "What should it be called?"},
	}

	ext, err := newTestExtractor(c).Extract(context.Background(), domain.IntentSchedule, "Standup tomorrow 9am for 15 minutes", history, nil)
	require.NoError(t, err)

	complete, ok := ext.(Complete)
	require.True(t, ok, "got %T", ext)
	assert.Equal(t, domain.ToolCreateMeeting, complete.Tool)

	var args CreateArgs
	require.NoError(t, json.Unmarshal(complete.Args, &args))
	assert.Equal(t, "Standup", args.Title)
	assert.Equal(t, FlexInt(15), args.DurationMinutes)
	assert.JSONEq(t, `{"title":"Standup","datetime":"2025-01-15T09:00:00+05:30","duration_minutes":15}`, string(complete.Args))

	require.Len(t, c.prompts, 1)
	assert.Contains(t, c.prompts[0], "user: Schedule a meeting")
	assert.Contains(t, c.prompts[0], "assistant: What should it be called?")
	assert.Contains(t, c.prompts[0], "Current input: Standup tomorrow 9am for 15 minutes")
	assert.Contains(t, c.prompts[0], "Tuesday, January 14, 2025 6:00 PM IST")
	assert.Nil(t, c.history[0])
}

func TestExtractIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		intent domain.Intent
		reply  string
	}{
		{"plain question", domain.IntentSchedule, "Sure! What should I call the meeting?"},
		{"missing duration", domain.IntentSchedule, `{"title":"Standup","datetime":"2025-01-15T09:00:00+05:30"}`},
		{"blank title", domain.IntentSchedule, `{"title":"  ","datetime":"2025-01-15T09:00:00+05:30","duration_minutes":15}`},
		{"bad duration", domain.IntentSchedule, `{"title":"Standup","datetime":"2025-01-15T09:00:00+05:30","duration_minutes":"soon"}`},
		{"malformed", domain.IntentReschedule, `{"meetingId": "Standup", "newDatetime": }`},
		{"null id", domain.IntentDelete, `{"meetingId": null}`},
		{"no query", domain.IntentSearch, `{"action":"search"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &scriptedCompleter{replies: []string{tt.reply}}
			ext, err := newTestExtractor(c).Extract(context.Background(), tt.intent, "hm", nil, nil)
			require.NoError(t, err)
			assert.Equal(t, Incomplete{FollowUp: tt.reply}, ext)
		})
	}
}

func TestExtractPerIntent(t *testing.T) {
	meetings := []domain.Meeting{{ID: "m1", Title: "Team Sync", Datetime: "2025-01-15T10:00:00+05:30", DurationMinutes: 30}}
	tests := []struct {
		intent domain.Intent
		reply  string
		tool   string
	}{
		{domain.IntentReschedule, `{"action":"update","meetingId":"m1","newDatetime":"2025-01-15T12:00:00+05:30"}`, domain.ToolUpdateMeeting},
		{domain.IntentDelete, `{"action":"delete","meetingId":"Team Sync"}`, domain.ToolDeleteMeeting},
		{domain.IntentSearch, `{"action":"search","query":"sync"}`, domain.ToolSearchMeetings},
	}
	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			c := &scriptedCompleter{replies: []string{tt.reply}}
			ext, err := newTestExtractor(c).Extract(context.Background(), tt.intent, "x", nil, meetings)
			require.NoError(t, err)
			complete, ok := ext.(Complete)
			require.True(t, ok)
			assert.Equal(t, tt.tool, complete.Tool)
			if tt.intent != domain.IntentSearch {
				assert.Contains(t, c.prompts[0], `"id": "m1"`)
			}
		})
	}
}

func TestExtractCompletionError(t *testing.T) {
	c := &scriptedCompleter{err: errors.New("upstream 502")}
	_, err := newTestExtractor(c).Extract(context.Background(), domain.IntentSchedule, "schedule", nil, nil)
	assert.ErrorContains(t, err, "upstream 502")

	_, err = newTestExtractor(&scriptedCompleter{}).Extract(context.Background(), domain.IntentGeneral, "hi", nil, nil)
	assert.Error(t, err)
}
