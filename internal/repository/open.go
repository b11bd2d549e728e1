package repository

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xiaot623/meetagent/internal/config"
)

// Open selects the store backend from configuration. The memory driver is the
// fallback when no database is configured.
func Open(cfg *config.Config, logger zerolog.Logger) (Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		s, err := NewSQLiteStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info().Str("driver", cfg.DatabaseDriver).Msg("meeting store ready")
		return s, nil
	case config.DriverPostgres:
		s, err := NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		logger.Info().Str("driver", cfg.DatabaseDriver).Msg("meeting store ready")
		return s, nil
	default:
		logger.Warn().Msg("no database configured, using in-memory meeting store")
		return NewMemoryStore(), nil
	}
}
