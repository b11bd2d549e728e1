package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xiaot623/meetagent/internal/domain"
	"github.com/xiaot623/meetagent/internal/tools"
)

// ListMeetings returns all meetings ordered by start time. Meetings whose
// datetime cannot be read sort last in store order.
func (s *Service) ListMeetings(ctx context.Context) ([]domain.Meeting, error) {
	meetings, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	sort.SliceStable(meetings, func(i, j int) bool {
		a, errA := meetings[i].Start(s.loc)
		b, errB := meetings[j].Start(s.loc)
		switch {
		case errA != nil:
			return false
		case errB != nil:
			return true
		default:
			return a.Before(b)
		}
	})
	return meetings, nil
}

// GetMeeting returns one meeting or repository.ErrNotFound.
func (s *Service) GetMeeting(ctx context.Context, id string) (*domain.Meeting, error) {
	return s.store.Get(ctx, id)
}

// CreateMeeting validates and stores a meeting without any conflict check.
func (s *Service) CreateMeeting(ctx context.Context, in domain.MeetingInput) (*domain.Meeting, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(s.loc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start, _ := domain.ParseDatetime(in.Datetime, s.loc)
	in.Datetime = domain.FormatDatetime(start, s.loc)

	m, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	s.logger.Info().Str("meeting_id", m.ID).Msg("meeting created")
	return m, nil
}

// UpdateMeeting applies a partial update. Only title, datetime, duration and
// notes can change.
func (s *Service) UpdateMeeting(ctx context.Context, id string, u domain.MeetingUpdate) (*domain.Meeting, error) {
	if u.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if u.DurationMinutes != nil {
		if err := domain.ValidateDuration(*u.DurationMinutes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if u.Datetime != nil {
		start, err := domain.ParseDatetime(*u.Datetime, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		normalized := domain.FormatDatetime(start, s.loc)
		u.Datetime = &normalized
	}

	m, err := s.store.Update(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("update meeting %s: %w", id, err)
	}
	return m, nil
}

// DeleteMeeting removes a meeting.
func (s *Service) DeleteMeeting(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete meeting %s: %w", id, err)
	}
	s.logger.Info().Str("meeting_id", id).Msg("meeting deleted")
	return nil
}

// InvokeTool runs a meeting tool directly, outside of a conversation.
func (s *Service) InvokeTool(ctx context.Context, tool string, args json.RawMessage) (tools.Result, error) {
	if !s.dispatcher.Has(tool) {
		return tools.Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, tool)
	}
	meetings, err := s.store.List(ctx)
	if err != nil {
		return tools.Result{}, fmt.Errorf("list meetings: %w", err)
	}
	return s.dispatcher.Execute(ctx, tool, args, meetings)
}

// Tools lists the tools InvokeTool accepts.
func (s *Service) Tools() []string {
	return s.dispatcher.Tools()
}
