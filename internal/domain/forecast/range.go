package forecast

import (
	"math"

	"github.com/okian/coverscope/internal/domain/model"
)

// DefaultMargin is the fallback half-width of the covers range as a share of
// the prediction.
// TODO: replace with a per-outlet value once the prediction API reports
// calibrated residuals.
const DefaultMargin = 0.15

// Range is the displayed covers interval.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Option applies a configuration option to the RangeEstimator.
type Option func(*RangeEstimator)

// WithMargin sets the fallback margin ratio. Values outside [0,1) are ignored.
func WithMargin(ratio float64) Option {
	return func(e *RangeEstimator) {
		if ratio >= 0 && ratio < 1 {
			e.margin = ratio
		}
	}
}

// RangeEstimator derives a covers range for a prediction, preferring the
// interval sent by the server.
type RangeEstimator struct {
	margin float64
}

// NewRangeEstimator creates an estimator using DefaultMargin unless overridden.
func NewRangeEstimator(opts ...Option) *RangeEstimator {
	e := &RangeEstimator{margin: DefaultMargin}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Margin returns the configured fallback ratio.
func (e *RangeEstimator) Margin() float64 {
	return e.margin
}

// Estimate returns the explicit interval verbatim when present, otherwise
// covers ± round(covers × margin) with the lower end floored at zero.
func (e *RangeEstimator) Estimate(p model.PredictionRecord) Range {
	if low, high, ok := p.Interval(); ok {
		return Range{Min: int(math.Round(low)), Max: int(math.Round(high))}
	}
	margin := int(math.Round(float64(p.PredictedCovers) * e.margin))
	return Range{
		Min: max(0, p.PredictedCovers-margin),
		Max: p.PredictedCovers + margin,
	}
}
