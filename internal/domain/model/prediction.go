// Package model contains the forecast records exchanged with the prediction
// API and handed to the rendering layer.
package model

import (
	"fmt"
	"math"
)

// StaffRoleRecommendation is the staffing advice for one role.
type StaffRoleRecommendation struct {
	Recommended int `json:"recommended"`
	Usual       int `json:"usual"`
	Delta       int `json:"delta"`
}

// StaffRecommendation groups role advice for a service.
type StaffRecommendation struct {
	Servers        StaffRoleRecommendation `json:"servers"`
	Hosts          StaffRoleRecommendation `json:"hosts"`
	Kitchen        StaffRoleRecommendation `json:"kitchen"`
	Rationale      string                  `json:"rationale"`
	CoversPerStaff float64                 `json:"covers_per_staff"`
}

// Pattern is a historical service the model found similar.
type Pattern struct {
	PatternID    string  `json:"pattern_id"`
	Date         string  `json:"date"`
	ActualCovers int     `json:"actual_covers"`
	Similarity   float64 `json:"similarity"`
	EventType    string  `json:"event_type,omitempty"`
}

// Reasoning explains a prediction.
type Reasoning struct {
	Summary           string    `json:"summary"`
	PatternsUsed      []Pattern `json:"patterns_used"`
	ConfidenceFactors []string  `json:"confidence_factors"`
}

// AccuracyMetrics carries optional model diagnostics.
type AccuracyMetrics struct {
	Method             string    `json:"method,omitempty"`
	PredictionInterval []float64 `json:"prediction_interval,omitempty"`
}

// PredictionRecord is one restaurant/date/service prediction.
//
// Upstream sends the date as either "date" or "service_date"; Normalize
// folds the latter into the former.
type PredictionRecord struct {
	Date                string              `json:"date,omitempty"`
	ServiceDate         string              `json:"service_date,omitempty"`
	PredictedCovers     int                 `json:"predicted_covers"`
	Confidence          float64             `json:"confidence"`
	StaffRecommendation StaffRecommendation `json:"staff_recommendation"`
	Reasoning           Reasoning           `json:"reasoning"`
	AccuracyMetrics     *AccuracyMetrics    `json:"accuracy_metrics,omitempty"`
}

// Normalize sets Date from ServiceDate when Date is missing.
func (p *PredictionRecord) Normalize() {
	if p.Date == "" && p.ServiceDate != "" {
		p.Date = p.ServiceDate
	}
}

// CanonicalDate returns Date, else ServiceDate, else "".
func (p PredictionRecord) CanonicalDate() string {
	if p.Date != "" {
		return p.Date
	}
	return p.ServiceDate
}

// Interval returns the explicit [low, high] prediction interval, if any.
func (p PredictionRecord) Interval() (low, high float64, ok bool) {
	if p.AccuracyMetrics == nil || len(p.AccuracyMetrics.PredictionInterval) < 2 {
		return 0, 0, false
	}
	iv := p.AccuracyMetrics.PredictionInterval
	return iv[0], iv[1], true
}

// Validate reports the first violated record invariant.
func (p PredictionRecord) Validate() error {
	if p.PredictedCovers < 0 {
		return fmt.Errorf("%w: predicted_covers %d is negative", ErrInvalidPrediction, p.PredictedCovers)
	}
	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidPrediction, p.Confidence)
	}
	if low, high, ok := p.Interval(); ok {
		covers := float64(p.PredictedCovers)
		if low > covers || covers > high {
			return fmt.Errorf("%w: interval [%v, %v] does not contain %d", ErrInvalidPrediction, low, high, p.PredictedCovers)
		}
	}
	return nil
}

// BatchResponse is the prediction API answer for a list of dates.
type BatchResponse struct {
	Predictions  []PredictionRecord `json:"predictions"`
	Count        int                `json:"count"`
	ServiceType  ServiceType        `json:"service_type"`
	RestaurantID string             `json:"restaurant_id"`
}

// Normalize normalizes every prediction in the batch.
func (b *BatchResponse) Normalize() {
	for i := range b.Predictions {
		b.Predictions[i].Normalize()
	}
}
