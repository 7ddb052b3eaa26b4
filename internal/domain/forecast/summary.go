package forecast

import (
	"math"

	"github.com/okian/coverscope/internal/domain/model"
)

// PeakDay identifies the busiest date of a window.
type PeakDay struct {
	Date   string `json:"date"`
	Covers int    `json:"covers"`
}

// BatchSummary aggregates a window of predictions.
type BatchSummary struct {
	TotalCovers   int     `json:"total_covers"`
	DailyAvg      int     `json:"daily_avg"`
	PeakDay       PeakDay `json:"peak_day"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// Summarize reduces predictions into totals, averages and the peak day.
//
// An empty input yields the zero summary. The peak day is the first record
// holding the maximum covers; later records only replace it when strictly
// greater.
func Summarize(predictions []model.PredictionRecord) BatchSummary {
	if len(predictions) == 0 {
		return BatchSummary{}
	}

	var (
		total      int
		confidence float64
		peak       = 0
	)
	for i, p := range predictions {
		total += p.PredictedCovers
		confidence += p.Confidence
		if p.PredictedCovers > predictions[peak].PredictedCovers {
			peak = i
		}
	}

	n := float64(len(predictions))
	return BatchSummary{
		TotalCovers: total,
		DailyAvg:    int(math.Round(float64(total) / n)),
		PeakDay: PeakDay{
			Date:   predictions[peak].CanonicalDate(),
			Covers: predictions[peak].PredictedCovers,
		},
		AvgConfidence: roundTo(confidence/n, 2),
	}
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
