package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
)

const icsProductID = "-//meetagent//meetings//EN"

// ExportICS writes every readable meeting as an iCalendar VEVENT.
func (s *Service) ExportICS(ctx context.Context, w io.Writer) error {
	meetings, err := s.ListMeetings(ctx)
	if err != nil {
		return err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)

	stamp := time.Now().UTC()
	for _, m := range meetings {
		window, err := m.Window(s.loc)
		if err != nil {
			s.logger.Warn().Err(err).Str("meeting_id", m.ID).Msg("skipping meeting in calendar export")
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, m.ID)
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, window.Start.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, window.End.UTC())
		event.Props.SetText(ical.PropSummary, m.Title)
		if notes := m.NotesText(); notes != "" {
			event.Props.SetText(ical.PropDescription, notes)
		}
		if m.Location != nil && *m.Location != "" {
			event.Props.SetText(ical.PropLocation, *m.Location)
		}
		if m.Category != "" {
			event.Props.SetText(ical.PropCategories, m.Category)
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}
