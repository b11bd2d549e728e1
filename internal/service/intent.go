package service

import (
	"strings"

	"github.com/xiaot623/meetagent/internal/domain"
)

// intentRules are evaluated in order; the first rule with a matching keyword wins.
var intentRules = []struct {
	intent   domain.Intent
	keywords []string
}{
	{domain.IntentList, []string{"list", "show", "what meetings", "calendar"}},
	{domain.IntentSchedule, []string{"schedule", "set up", "create", "new meeting"}},
	{domain.IntentDelete, []string{"delete", "cancel", "remove"}},
	{domain.IntentSearch, []string{"find", "search", "look for"}},
	{domain.IntentReschedule, []string{"reschedule", "move", "change", "delay"}},
}

// Classify maps an utterance to an intent by case-insensitive substring match.
// "reschedule" contains "schedule", so it routes to schedule; only the other
// reschedule keywords reach the reschedule intent.
func Classify(utterance string) domain.Intent {
	text := strings.ToLower(utterance)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.intent
			}
		}
	}
	return domain.IntentGeneral
}
