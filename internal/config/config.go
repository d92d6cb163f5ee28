// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"POLYGLOT_DB_PATH" envDefault:"./data/polyglot.db"`
	ServerHost string `env:"POLYGLOT_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"POLYGLOT_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"POLYGLOT_ENV" envDefault:"development"`
	LogLevel   string `env:"POLYGLOT_LOG_LEVEL" envDefault:"info"`

	// Translation provider configuration
	OpenRouterAPIKey string        `env:"POLYGLOT_OPENROUTER_API_KEY"`
	AIModel          string        `env:"POLYGLOT_AI_MODEL" envDefault:"anthropic/claude-3.5-sonnet"`
	APITimeout       time.Duration `env:"POLYGLOT_API_TIMEOUT" envDefault:"90s"`

	// Queue worker configuration
	Workers int `env:"POLYGLOT_WORKERS" envDefault:"3"`

	// Cache configuration
	RedisURL    string        `env:"POLYGLOT_REDIS_URL"` // Optional Redis URL for distributed caching
	CachePrefix string        `env:"POLYGLOT_CACHE_PREFIX" envDefault:"polyglot:"`
	CacheTTL    time.Duration `env:"POLYGLOT_CACHE_TTL" envDefault:"1h"`

	// Seeding configuration
	DoSeed bool `env:"POLYGLOT_DO_SEED" envDefault:"true"` // Seed the default language on first run
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// TranslationEnabled returns true if the translation provider is configured.
// Without an API key the server still serves content and accepts queue
// submissions; jobs wait until a key is provided.
func (c Config) TranslationEnabled() bool {
	return c.OpenRouterAPIKey != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Workers < 1 {
		return nil, fmt.Errorf("POLYGLOT_WORKERS must be at least 1, got %d", cfg.Workers)
	}
	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("POLYGLOT_API_TIMEOUT must be positive, got %s", cfg.APITimeout)
	}

	return cfg, nil
}
