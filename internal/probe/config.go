package probe

import (
	"fmt"
	"time"

	"github.com/okian/coverscope/internal/domain/daterange"
	"github.com/okian/coverscope/internal/domain/model"
)

// Config holds the parameters of one probe run.
type Config struct {
	APIURL       string            // Base URL of the prediction API
	RestaurantID string            // Restaurant to forecast
	ServiceType  model.ServiceType // Meal service
	Granularity  model.Granularity // day, week or month window
	Date         string            // Anchor date, YYYY-MM-DD; empty means today
	Timeout      time.Duration     // Per request timeout
	Margin       float64           // Fallback range margin
	Location     *time.Location    // Zone in which "today" is evaluated
}

// anchor resolves Date, defaulting to today in Location.
func (c *Config) anchor(now time.Time) (time.Time, error) {
	if c.Date == "" {
		loc := c.Location
		if loc == nil {
			loc = time.Local
		}
		return daterange.Civil(now.In(loc)), nil
	}
	return daterange.Parse(c.Date)
}

// validate checks the fields a forecast run needs.
func (c *Config) validate() error {
	switch {
	case c.APIURL == "":
		return fmt.Errorf("%w: api url is required", ErrInvalidConfig)
	case c.RestaurantID == "":
		return fmt.Errorf("%w: restaurant is required", ErrInvalidConfig)
	case !c.ServiceType.Valid():
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, model.ErrUnknownServiceType, c.ServiceType)
	case !c.Granularity.Valid():
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, model.ErrUnknownGranularity, c.Granularity)
	}
	return nil
}
