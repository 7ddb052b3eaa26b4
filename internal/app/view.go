package app

import (
	"github.com/okian/coverscope/internal/domain/forecast"
	"github.com/okian/coverscope/internal/domain/model"
	"github.com/okian/coverscope/internal/domain/navigation"
)

// Selection is the restaurant and service type predictions are made for.
type Selection struct {
	RestaurantID string            `json:"restaurant_id"`
	ServiceType  model.ServiceType `json:"service_type"`
}

// Ready reports whether a restaurant is selected.
func (s Selection) Ready() bool { return s.RestaurantID != "" }

// Cursor is the JSON form of the navigation state.
type Cursor struct {
	Granularity model.Granularity `json:"granularity"`
	Anchor      string            `json:"anchor"`
	Label       string            `json:"label"`
}

func cursorOf(st navigation.State) Cursor {
	return Cursor{
		Granularity: st.Granularity,
		Anchor:      st.AnchorISO(),
		Label:       navigation.Label(st),
	}
}

// DayView is the day granularity payload.
type DayView struct {
	Display    forecast.DisplayRecord `json:"display"`
	Reasoning  model.Reasoning        `json:"reasoning"`
	Prediction model.PredictionRecord `json:"prediction"`
}

// BatchView is the week and month granularity payload. Every prediction is
// kept for charting next to the summary.
type BatchView struct {
	Predictions  []model.PredictionRecord `json:"predictions"`
	Summary      forecast.BatchSummary    `json:"summary"`
	Count        int                      `json:"count"`
	ServiceType  model.ServiceType        `json:"service_type"`
	RestaurantID string                   `json:"restaurant_id"`
}

// ViewData is a loaded view. Exactly one of Day and Batch is set. It is
// built once and never mutated.
type ViewData struct {
	Cursor
	Dates     []string   `json:"dates"`
	Selection Selection  `json:"selection"`
	Day       *DayView   `json:"day,omitempty"`
	Batch     *BatchView `json:"batch,omitempty"`
}

// ViewEnvelope wraps the current view with its loading and error state.
type ViewEnvelope struct {
	Loading bool      `json:"loading"`
	Error   string    `json:"error,omitempty"`
	Data    *ViewData `json:"data"`
}

// ProfileEnvelope wraps the selected restaurant profile.
type ProfileEnvelope struct {
	Loading      bool                     `json:"loading"`
	Error        string                   `json:"error,omitempty"`
	RestaurantID string                   `json:"restaurant_id,omitempty"`
	Data         *model.RestaurantProfile `json:"data"`
}
