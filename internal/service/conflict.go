package service

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xiaot623/meetagent/internal/domain"
)

// FindConflicts returns the existing meetings whose [start, end) window
// overlaps candidate. Back-to-back meetings do not conflict. Meetings whose
// stored datetime cannot be parsed are skipped.
func FindConflicts(candidate domain.Window, existing []domain.Meeting, loc *time.Location) []domain.Meeting {
	var conflicts []domain.Meeting
	for _, m := range existing {
		w, err := m.Window(loc)
		if err != nil {
			log.Warn().Err(err).Str("meeting_id", m.ID).Msg("skipping meeting with unreadable datetime in conflict check")
			continue
		}
		if candidate.Overlaps(w) {
			conflicts = append(conflicts, m)
		}
	}
	return conflicts
}
