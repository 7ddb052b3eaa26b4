// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers dotenv, YAML and environment on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"time"

	"github.com/okian/coverscope/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// APIURL is the base URL of the prediction API.
	APIURL string `koanf:"api_url"`

	// RequestTimeoutMS bounds every prediction API call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RangeMargin is the fallback half-width of the covers range as a
	// share of the prediction, used when the API sends no interval.
	RangeMargin float64 `koanf:"range_margin"`

	// DefaultRestaurant and DefaultServiceType seed the session selection.
	DefaultRestaurant  string `koanf:"default_restaurant"`
	DefaultServiceType string `koanf:"default_service_type"`

	// Restaurants is the selectable outlet list.
	Restaurants []model.Restaurant `koanf:"restaurants"`

	// BreakerMaxFailures consecutive upstream failures open the breaker
	// for BreakerOpenTimeoutMS.
	BreakerMaxFailures   int `koanf:"breaker_max_failures"`
	BreakerOpenTimeoutMS int `koanf:"breaker_open_timeout_ms"`

	// Timezone names the zone in which "today" is evaluated.
	Timezone string `koanf:"timezone"`
}

// DefaultRestaurants is used when no list is configured.
func DefaultRestaurants() []model.Restaurant {
	return []model.Restaurant{
		{ID: "hotel_main", Name: "Main Restaurant"},
		{ID: "hotel_bar", Name: "Bar"},
		{ID: "hotel_terrace", Name: "Terrace"},
	}
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		APIURL:               "http://localhost:8000",
		RequestTimeoutMS:     30_000,
		RangeMargin:          0.15,
		DefaultRestaurant:    "hotel_main",
		DefaultServiceType:   string(model.ServiceDinner),
		BreakerMaxFailures:   5,
		BreakerOpenTimeoutMS: 30_000,
		Timezone:             "Local",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// BreakerOpenTimeout returns BreakerOpenTimeoutMS as a duration.
func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenTimeoutMS) * time.Millisecond
}

// ServiceType returns the parsed default service type, dinner when invalid.
func (c *Config) ServiceType() model.ServiceType {
	st, err := model.ParseServiceType(c.DefaultServiceType)
	if err != nil {
		return model.ServiceDinner
	}
	return st
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
