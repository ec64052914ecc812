// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to the Vite dev server. Set CORS_ORIGINS to a comma-separated
	// list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// MaxBodyBytes caps request bodies; larger requests get 413.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// MigrateOnStart applies pending migrations before serving.
	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"false"`
}

// Load reads configuration from environment variables and returns a Config.
// The error names any required variable that is missing or empty.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("config: MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}
	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog.Level. Unknown values fall back to info.
func (c Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// trimAll trims each entry, dropping empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
