// Package probe runs one-off forecast queries against the prediction API
// and prints them the way the dashboard would show them. It backs the
// coverscope-cli commands.
package probe

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/okian/coverscope/internal/adapters/predictapi"
	"github.com/okian/coverscope/internal/domain/daterange"
	"github.com/okian/coverscope/internal/domain/forecast"
	"github.com/okian/coverscope/internal/domain/model"
	"github.com/okian/coverscope/internal/domain/navigation"
	"github.com/okian/coverscope/pkg/logger"
)

// Fetcher is the subset of the prediction client the probe needs.
type Fetcher interface {
	FetchDay(ctx context.Context, restaurantID, date string, st model.ServiceType) (model.PredictionRecord, error)
	FetchBatch(ctx context.Context, restaurantID string, dates []string, st model.ServiceType) (model.BatchResponse, error)
	FetchProfile(ctx context.Context, name string) (model.RestaurantProfile, error)
}

// NewClient builds the prediction client for cfg.
func NewClient(cfg *Config, log logger.Logger) (*predictapi.Client, error) {
	return predictapi.NewClient(cfg.APIURL,
		predictapi.WithTimeout(cfg.Timeout),
		predictapi.WithLogger(log),
		predictapi.WithBreakerName("probe"),
	)
}

// Window returns the dates cfg asks for.
func Window(cfg *Config, now time.Time) ([]string, error) {
	anchor, err := cfg.anchor(now)
	if err != nil {
		return nil, err
	}
	return daterange.Window(anchor, cfg.Granularity)
}

// Forecast fetches the window of cfg and writes the report to w.
func Forecast(ctx context.Context, cfg *Config, f Fetcher, w io.Writer) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	anchor, err := cfg.anchor(time.Now())
	if err != nil {
		return err
	}
	dates, err := daterange.Window(anchor, cfg.Granularity)
	if err != nil {
		return err
	}
	label := navigation.Label(navigation.State{Granularity: cfg.Granularity, Anchor: anchor})

	r := &reporter{w: w}
	r.header(label, cfg)

	if cfg.Granularity == model.Day {
		rec, err := f.FetchDay(ctx, cfg.RestaurantID, dates[0], cfg.ServiceType)
		if err != nil {
			return err
		}
		estimator := forecast.NewRangeEstimator(forecast.WithMargin(cfg.Margin))
		r.day(forecast.NewTransformer(estimator).Transform(rec), rec.Reasoning)
		return r.err
	}

	resp, err := f.FetchBatch(ctx, cfg.RestaurantID, dates, cfg.ServiceType)
	if err != nil {
		return err
	}
	r.batch(resp.Predictions, forecast.Summarize(resp.Predictions))
	return r.err
}

// Profile fetches and prints the profile of the outlet called name.
func Profile(ctx context.Context, f Fetcher, name string, w io.Writer) error {
	if name == "" {
		return fmt.Errorf("%w: restaurant is required", ErrInvalidConfig)
	}
	p, err := f.FetchProfile(ctx, name)
	if err != nil {
		return err
	}
	r := &reporter{w: w}
	r.profile(p)
	return r.err
}
