package forecast

import "github.com/okian/coverscope/internal/domain/model"

// DisplayRecord is a single-day prediction re-projected for presentation.
type DisplayRecord struct {
	Date             string          `json:"date"`
	PredictedCovers  int             `json:"predicted_covers"`
	ConfidenceLabel  ConfidenceLabel `json:"confidence_label"`
	ConfidenceScore  float64         `json:"confidence_score"`
	RangeMin         int             `json:"range_min"`
	RangeMax         int             `json:"range_max"`
	Servers          int             `json:"servers"`
	ReasoningSummary string          `json:"reasoning_summary"`
}

// Transformer builds DisplayRecords.
type Transformer struct {
	estimator *RangeEstimator
}

// NewTransformer creates a transformer using estimator for ranges. A nil
// estimator falls back to DefaultMargin.
func NewTransformer(estimator *RangeEstimator) *Transformer {
	if estimator == nil {
		estimator = NewRangeEstimator()
	}
	return &Transformer{estimator: estimator}
}

// Transform composes the confidence label, the covers range and the
// projected staffing and reasoning fields of p.
func (t *Transformer) Transform(p model.PredictionRecord) DisplayRecord {
	r := t.estimator.Estimate(p)
	return DisplayRecord{
		Date:             p.CanonicalDate(),
		PredictedCovers:  p.PredictedCovers,
		ConfidenceLabel:  Classify(p.Confidence),
		ConfidenceScore:  p.Confidence,
		RangeMin:         r.Min,
		RangeMax:         r.Max,
		Servers:          p.StaffRecommendation.Servers.Recommended,
		ReasoningSummary: p.Reasoning.Summary,
	}
}
