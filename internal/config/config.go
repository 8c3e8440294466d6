package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port string `env:"PORT" envDefault:"8009"`

	WarfishURL     string        `env:"WARFISH_URL" envDefault:"http://warfish.net/war"`
	WarfishTimeout time.Duration `env:"WARFISH_TIMEOUT" envDefault:"10s"`
	WarfishRetries uint          `env:"WARFISH_RETRIES" envDefault:"3"`
	WarfishRPS     float64       `env:"WARFISH_RPS" envDefault:"2"`

	// DatabaseURL selects the lookup history store: postgres://… or sqlite://path.
	// Empty disables history.
	DatabaseURL string `env:"DATABASE_URL"`
	// RedisURL enables shared rate-limit counters. Empty keeps them in process.
	RedisURL string `env:"REDIS_URL"`

	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	WatchInterval      time.Duration `env:"WATCH_INTERVAL" envDefault:"60s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
	Dev      bool   `env:"DEV"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.WarfishRetries == 0 {
		return fmt.Errorf("WARFISH_RETRIES must be at least 1")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.WatchInterval < time.Second {
		return fmt.Errorf("WATCH_INTERVAL must be at least 1s, got %s", c.WatchInterval)
	}
	if c.DatabaseURL != "" && c.HistoryDriver() == "" {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or sqlite://")
	}
	return nil
}

// HistoryDriver returns "postgres", "sqlite", or "" when history is disabled.
func (c *Config) HistoryDriver() string {
	switch {
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(c.DatabaseURL, "sqlite://"):
		return "sqlite"
	}
	return ""
}

// SQLitePath returns the file path of a sqlite:// DatabaseURL.
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite://")
}
