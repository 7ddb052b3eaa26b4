package probe

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/okian/coverscope/internal/domain/forecast"
	"github.com/okian/coverscope/internal/domain/model"
)

// reporter writes plain text reports; the first write error sticks.
type reporter struct {
	w   io.Writer
	err error
}

func (r *reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *reporter) header(label string, cfg *Config) {
	r.printf("%s | %s | %s\n\n", label, cfg.RestaurantID, cfg.ServiceType)
}

func (r *reporter) day(d forecast.DisplayRecord, reasoning model.Reasoning) {
	r.printf("Covers:     %d (range %d-%d)\n", d.PredictedCovers, d.RangeMin, d.RangeMax)
	r.printf("Confidence: %s (%.0f%%)\n", d.ConfidenceLabel, d.ConfidenceScore*100)
	r.printf("Servers:    %d\n", d.Servers)
	if d.ReasoningSummary != "" {
		r.printf("\n%s\n", d.ReasoningSummary)
	}
	for _, f := range reasoning.ConfidenceFactors {
		r.printf("  - %s\n", f)
	}
}

func (r *reporter) batch(predictions []model.PredictionRecord, s forecast.BatchSummary) {
	if r.err != nil {
		return
	}
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	t := &reporter{w: tw}
	t.printf("Date\tCovers\tConfidence\t\n")
	for _, p := range predictions {
		t.printf("%s\t%d\t%s\t\n", p.CanonicalDate(), p.PredictedCovers, forecast.Classify(p.Confidence))
	}
	t.printf("\t\t\t\n")
	t.printf("Total\t%d\t\t\n", s.TotalCovers)
	t.printf("Daily avg\t%d\t\t\n", s.DailyAvg)
	t.printf("Peak\t%d\t%s\t\n", s.PeakDay.Covers, s.PeakDay.Date)
	t.printf("Avg confidence\t%s\t\t\n", strconv.FormatFloat(s.AvgConfidence, 'f', 2, 64))
	if t.err == nil {
		t.err = tw.Flush()
	}
	r.err = t.err
}

func (r *reporter) profile(p model.RestaurantProfile) {
	r.printf("%s (%s)\n", p.OutletName, p.OutletType)
	if p.PropertyName != "" {
		r.printf("Property:   %s\n", p.PropertyName)
	}
	r.printf("Seats:      %d\n", p.TotalSeats)
	r.printf("Breakeven:  %s\n", optional(p.BreakevenCovers))
	r.printf("Target:     %s\n", optional(p.TargetCovers))
	r.printf("Covers per server %.1f, host %.1f, runner %.1f, kitchen %.1f\n",
		p.CoversPerServer, p.CoversPerHost, p.CoversPerRunner, p.CoversPerKitchen)
	r.printf("Minimum staff: FOH %d, BOH %d\n", p.MinFOHStaff, p.MinBOHStaff)
}

func optional(v *int) string {
	if v == nil {
		return "n/a"
	}
	return strconv.Itoa(*v)
}
