// Package config loads the process settings from the environment.
//
// Settings are read exactly once, in main, into a Config value that is then
// passed by value to the constructors that need it. Nothing reads the
// environment after startup and there is no package-level settings variable.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Config contains every tunable of the server.
type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DatabaseURL selects the store: postgres:// or postgresql:// for
	// Postgres, sqlite://<path>, a bare path or :memory: for SQLite.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://data/hodeway.db"`

	SecretKey                string `env:"SECRET_KEY,required,notEmpty"`
	Algorithm                string `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	BcryptCost               int    `env:"BCRYPT_COST" envDefault:"12"`

	APIV1Str string `env:"API_V1_STR" envDefault:"/api/v1"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks values the env tags cannot express. The secret length and
// signing algorithm are checked again by auth.NewTokenService; doing it here
// too makes a bad deployment fail before any connection is opened.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: PORT must be between 1 and 65535, got %d", c.Port)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if len(c.SecretKey) < 16 {
		return fmt.Errorf("config: SECRET_KEY must be at least 16 characters")
	}

	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("config: ALGORITHM must be one of HS256, HS384, HS512, got %q", c.Algorithm)
	}

	if c.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("config: ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenExpireMinutes)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL must not be empty")
	}

	if !strings.HasPrefix(c.APIV1Str, "/") || strings.HasSuffix(c.APIV1Str, "/") {
		return fmt.Errorf("config: API_V1_STR must start with '/' and not end with one, got %q", c.APIV1Str)
	}

	return nil
}

// TokenTTL is the access-token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// SlogLevel converts LOG_LEVEL (debug, info, warn, error) to a slog.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
