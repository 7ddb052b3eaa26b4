package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/coverscope/internal/domain/model"
)

const (
	envPrefix      = "COVERSCOPE_"
	envConfigFile  = envPrefix + "CONFIG"
	envDotEnvFile  = envPrefix + "ENV_FILE"
	defaultDotEnv  = ".env"
	maxRangeMargin = 1.0
)

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file if COVERSCOPE_CONFIG is set
//  3. environment (prefix COVERSCOPE_), seeded from a dotenv file
//     (COVERSCOPE_ENV_FILE, or ./.env when present) without overriding
//     variables already set
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// COVERSCOPE_API_URL -> api_url; underscores are kept to match the
	// flat koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if len(cfg.Restaurants) == 0 {
		cfg.Restaurants = DefaultRestaurants()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv(envDotEnvFile)
	if path == "" {
		if _, err := os.Stat(defaultDotEnv); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = defaultDotEnv
	}
	return godotenv.Load(path)
}

// Validate checks field invariants.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.APIURL) == "":
		return fmt.Errorf("%w: api_url must not be empty", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.RangeMargin < 0 || c.RangeMargin >= maxRangeMargin:
		return fmt.Errorf("%w: range_margin must be in [0,1)", ErrInvalidConfig)
	case c.BreakerMaxFailures <= 0:
		return fmt.Errorf("%w: breaker_max_failures must be positive", ErrInvalidConfig)
	case c.BreakerOpenTimeoutMS <= 0:
		return fmt.Errorf("%w: breaker_open_timeout_ms must be positive", ErrInvalidConfig)
	}
	if _, err := model.ParseServiceType(c.DefaultServiceType); err != nil {
		return fmt.Errorf("%w: default_service_type: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: timezone: %w", ErrInvalidConfig, err)
	}
	known := false
	for _, r := range c.Restaurants {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("%w: restaurant id must not be empty", ErrInvalidConfig)
		}
		known = known || r.ID == c.DefaultRestaurant
	}
	if c.DefaultRestaurant != "" && !known {
		return fmt.Errorf("%w: default_restaurant %q is not in restaurants", ErrInvalidConfig, c.DefaultRestaurant)
	}
	return nil
}
