package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xiaot623/meetagent/internal/domain"
)

// ApologyText is the only thing a user hears when a turn fails.
const ApologyText = "I apologize, but I encountered an error. Could you please try again?"

// HandleTurn answers one user utterance given the caller-held history. It
// never returns an error: failures are logged and answered with ApologyText.
func (s *Service) HandleTurn(ctx context.Context, req domain.TurnRequest) (resp domain.TurnResponse) {
	logger := s.logger.With().Str("turn_id", uuid.NewString()[:8]).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("turn panicked")
			resp = apology()
		}
	}()

	reply, collecting, err := s.handleTurn(ctx, logger, req)
	if err != nil {
		logger.Error().Err(err).Msg("turn failed")
		return apology()
	}
	return domain.TurnResponse{
		Response:          reply,
		ConversationState: domain.ConversationState{Collecting: collecting},
	}
}

func (s *Service) handleTurn(ctx context.Context, logger zerolog.Logger, req domain.TurnRequest) (string, domain.Collecting, error) {
	meetings, err := s.store.List(ctx)
	if err != nil {
		return "", "", fmt.Errorf("list meetings: %w", err)
	}

	intent := Classify(req.Message)
	logger.Debug().
		Str("intent", string(intent)).
		Int("history", len(req.ConversationHistory)).
		Msg("turn classified")

	switch intent {
	case domain.IntentList:
		res, err := s.dispatcher.Execute(ctx, domain.ToolListMeetings, nil, meetings)
		if err != nil {
			return "", "", err
		}
		return res.Reply, res.Collecting, nil

	case domain.IntentGeneral:
		prompt := req.Message + s.formatter.MeetingsContext(meetings)
		reply, err := s.chat.Complete(ctx, prompt, req.ConversationHistory)
		if err != nil {
			return "", "", fmt.Errorf("general conversation: %w", err)
		}
		return strings.TrimSpace(reply), domain.CollectingNone, nil
	}

	ext, err := s.extractor.Extract(ctx, intent, req.Message, req.ConversationHistory, meetings)
	if err != nil {
		return "", "", err
	}

	switch e := ext.(type) {
	case Complete:
		res, err := s.dispatcher.Execute(ctx, e.Tool, e.Args, meetings)
		if err != nil {
			return "", "", fmt.Errorf("run %s: %w", e.Tool, err)
		}
		logger.Info().Str("tool", e.Tool).Str("collecting", string(res.Collecting)).Msg("tool executed")
		return res.Reply, res.Collecting, nil
	case Incomplete:
		return e.FollowUp, intent.Collecting(), nil
	default:
		return "", "", fmt.Errorf("unexpected extraction %T", ext)
	}
}

func apology() domain.TurnResponse {
	return domain.TurnResponse{Response: ApologyText}
}
