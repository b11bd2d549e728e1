package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xiaot623/meetagent/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		utterance string
		want      domain.Intent
	}{
		{"Show me my meetings", domain.IntentList},
		{"What meetings do I have today?", domain.IntentList},
		{"what's on my calendar", domain.IntentList},
		{"Schedule a meeting", domain.IntentSchedule},
		{"Can you set up a call with Priya", domain.IntentSchedule},
		{"create a new meeting", domain.IntentSchedule},
		{"Cancel the budget review", domain.IntentDelete},
		{"remove the sync", domain.IntentDelete},
		{"find my meeting with design", domain.IntentSearch},
		{"look for the retro", domain.IntentSearch},
		{"Reschedule the standup to 10", domain.IntentSchedule},
		{"move my 1:1 to Friday", domain.IntentReschedule},
		{"can you delay it by an hour", domain.IntentReschedule},
		{"hello there", domain.IntentGeneral},
		{"", domain.IntentGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.utterance))
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// list wins over every other keyword on the same utterance
	for _, u := range []string{
		"list my meetings and schedule a new one",
		"schedule something, but first show my calendar",
		"cancel nothing, just list everything",
		"find and reschedule, then show",
	} {
		assert.Equal(t, domain.IntentList, Classify(u), u)
	}
	assert.Equal(t, domain.IntentSchedule, Classify("schedule and then cancel"))
	assert.Equal(t, domain.IntentDelete, Classify("cancel it or find another slot"))
	assert.Equal(t, domain.IntentSearch, Classify("search for the meeting I should move"))
}

func TestClassifyMatchesSubstrings(t *testing.T) {
	tests := []struct {
		utterance string
		want      domain.Intent
	}{
		// "checklist" contains "list"
		{"put the checklist review on my schedule", domain.IntentList},
		{"Can you reschedule the standup", domain.IntentSchedule},
		{"recreate the sprint meeting", domain.IntentSchedule},
		// "remove" is checked before "move"
		{"remove it", domain.IntentDelete},
		{"please change the retro time", domain.IntentReschedule},
		{"LIST", domain.IntentList},
	}
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.utterance))
		})
	}
}
