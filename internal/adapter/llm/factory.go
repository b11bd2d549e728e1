package llm

import (
	"github.com/rs/zerolog/log"

	"github.com/xiaot623/meetagent/internal/config"
)

// NewLLMClient creates an LLM client based on the configured mode.
// If MEETAGENT_MODE=MOCK, returns a MockClient; otherwise returns a real Client.
func NewLLMClient(cfg *config.Config) LLMClient {
	if cfg.MockLLM() {
		log.Info().Msg("MEETAGENT_MODE=MOCK detected, using mock LLM client")
		return NewMockClient()
	}
	if cfg.LLMAPIKey == "" {
		log.Warn().Msg("LLM API key not set; completion requests will be sent unauthenticated")
	}
	return NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)
}
