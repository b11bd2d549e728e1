// Package service holds the conversation core: intent routing, slot filling,
// conflict detection and the meeting tools, plus the direct meeting API.
package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/xiaot623/meetagent/internal/adapter/llm"
	"github.com/xiaot623/meetagent/internal/repository"
)

// Service implements the meeting agent's business logic.
type Service struct {
	store      repository.Store
	extractor  *Extractor
	chat       llm.Completer
	dispatcher *Dispatcher
	formatter  *Formatter
	loc        *time.Location
	logger     zerolog.Logger
}

// New creates a new service. extract answers slot-filling prompts; chat
// answers general conversation and should carry the assistant persona.
func New(store repository.Store, extract, chat llm.Completer, pe PolicyEvaluator, loc *time.Location, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		extractor:  NewExtractor(extract, loc),
		chat:       chat,
		dispatcher: NewDispatcher(store, pe, loc),
		formatter:  NewFormatter(loc),
		loc:        loc,
		logger:     logger.With().Str("component", "service").Logger(),
	}
}

// Location returns the timezone meetings are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}
