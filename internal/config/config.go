// Package config provides configuration for the meeting agent.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable, e.g. MEETAGENT_HTTP_PORT.
const Prefix = "MEETAGENT"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ModeMock selects the mock LLM client.
const ModeMock = "MOCK"

// Config holds the meeting agent configuration.
type Config struct {
	// Server settings
	HTTPPort int `envconfig:"HTTP_PORT" default:"3001"`

	// Meeting store
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"memory"`
	DatabaseURL    string `envconfig:"DATABASE_URL" default:"file:meetings.db?cache=shared&mode=rwc"`

	// Completion service
	LLMBaseURL     string        `envconfig:"LLM_BASE_URL" default:"https://api.openai.com"`
	LLMAPIKey      string        `envconfig:"LLM_API_KEY"`
	LLMModel       string        `envconfig:"LLM_MODEL" default:"gpt-4"`
	LLMTemperature float64       `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	LLMTimeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	Mode           string        `envconfig:"MODE"`

	// Timezone meetings are read and spoken in unless the user states another.
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Kolkata"`

	// WebSocket settings
	WSPingInterval   time.Duration `envconfig:"WS_PING_INTERVAL" default:"30s"`
	WSWriteTimeout   time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s"`
	WSReadTimeout    time.Duration `envconfig:"WS_READ_TIMEOUT" default:"60s"`
	WSMaxMessageSize int64         `envconfig:"WS_MAX_MESSAGE_SIZE" default:"65536"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER: %s", c.DatabaseDriver)
	}
	if c.DatabaseDriver == DriverPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}
	return nil
}

// MockLLM reports whether the mock completion client should be used.
func (c *Config) MockLLM() bool {
	return c.Mode == ModeMock
}

// Location resolves the configured timezone. Hosts without zoneinfo fall back
// to a fixed +05:30 zone labelled IST.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return DefaultLocation
}

// DefaultLocation is Indian Standard Time as a fixed zone.
var DefaultLocation = time.FixedZone("IST", 5*3600+30*60)
