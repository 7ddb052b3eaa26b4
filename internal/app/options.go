package app

import (
	"github.com/okian/coverscope/internal/domain/forecast"
	"github.com/okian/coverscope/internal/domain/model"
	"github.com/okian/coverscope/internal/domain/navigation"
	"github.com/okian/coverscope/pkg/logger"
)

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithLogger sets a custom logger for the session.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNavigation passes options to the navigation controller built on Start.
func WithNavigation(opts ...navigation.Option) Option {
	return func(s *Session) {
		s.navOpts = append(s.navOpts, opts...)
	}
}

// WithRestaurants sets the selectable restaurant list.
func WithRestaurants(restaurants []model.Restaurant) Option {
	return func(s *Session) {
		if len(restaurants) > 0 {
			s.restaurants = append([]model.Restaurant(nil), restaurants...)
		}
	}
}

// WithDefaultSelection sets the selection applied on Start. An empty
// restaurant id starts the session without a restaurant.
func WithDefaultSelection(restaurantID string, st model.ServiceType) Option {
	return func(s *Session) {
		s.defaults.RestaurantID = restaurantID
		if st.Valid() {
			s.defaults.ServiceType = st
		}
	}
}

// WithRangeEstimator sets the estimator used for day view ranges.
func WithRangeEstimator(e *forecast.RangeEstimator) Option {
	return func(s *Session) {
		if e != nil {
			s.transformer = forecast.NewTransformer(e)
		}
	}
}
