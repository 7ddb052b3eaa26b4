// Package forecast derives display fields and window summaries from
// prediction records. Nothing here performs I/O or returns errors; every
// missing optional field has a defined fallback.
package forecast

// ConfidenceLabel is the categorical rendering of a confidence score.
type ConfidenceLabel string

// Confidence tiers, ordered from most to least confident.
const (
	ConfidenceHigh   ConfidenceLabel = "High"
	ConfidenceMedium ConfidenceLabel = "Medium"
	ConfidenceLow    ConfidenceLabel = "Low"
)

// Tier lower bounds; each bound belongs to the tier above it.
const (
	HighConfidenceThreshold   = 0.8
	MediumConfidenceThreshold = 0.5
)

// Classify maps a confidence score in [0,1] to its label.
func Classify(confidence float64) ConfidenceLabel {
	switch {
	case confidence >= HighConfidenceThreshold:
		return ConfidenceHigh
	case confidence >= MediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
