package forecast_test

import (
	"testing"

	"github.com/okian/coverscope/internal/domain/forecast"
	"github.com/okian/coverscope/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSummarize(t *testing.T) {
	Convey("Given an empty window", t, func() {
		s := forecast.Summarize(nil)

		Convey("Then the degenerate summary should be returned", func() {
			So(s, ShouldResemble, forecast.BatchSummary{
				TotalCovers:   0,
				DailyAvg:      0,
				PeakDay:       forecast.PeakDay{Date: "", Covers: 0},
				AvgConfidence: 0,
			})
		})
	})

	Convey("Given three days of predictions", t, func() {
		preds := []model.PredictionRecord{
			{Date: "2026-06-01", PredictedCovers: 80, Confidence: 0.9},
			{Date: "2026-06-02", PredictedCovers: 120, Confidence: 0.6},
			{Date: "2026-06-03", PredictedCovers: 100, Confidence: 0.75},
		}

		Convey("When summarizing", func() {
			s := forecast.Summarize(preds)

			Convey("Then totals, average, peak and confidence should match", func() {
				So(s.TotalCovers, ShouldEqual, 300)
				So(s.DailyAvg, ShouldEqual, 100)
				So(s.PeakDay, ShouldResemble, forecast.PeakDay{Date: "2026-06-02", Covers: 120})
				So(s.AvgConfidence, ShouldAlmostEqual, 0.75, 1e-9)
			})
		})
	})

	Convey("Given several days sharing the maximum", t, func() {
		preds := []model.PredictionRecord{
			{Date: "2026-06-01", PredictedCovers: 50},
			{Date: "2026-06-02", PredictedCovers: 140},
			{Date: "2026-06-03", PredictedCovers: 140},
			{Date: "2026-06-04", PredictedCovers: 90},
		}

		Convey("Then the earliest one should be the peak", func() {
			So(forecast.Summarize(preds).PeakDay.Date, ShouldEqual, "2026-06-02")
		})
	})

	Convey("Given all days tied", t, func() {
		preds := []model.PredictionRecord{
			{Date: "2026-06-01", PredictedCovers: 10},
			{Date: "2026-06-02", PredictedCovers: 10},
		}

		Convey("Then the first record should win", func() {
			So(forecast.Summarize(preds).PeakDay.Date, ShouldEqual, "2026-06-01")
		})
	})

	Convey("Given a peak record that only carries the alternate date", t, func() {
		preds := []model.PredictionRecord{
			{Date: "2026-06-01", PredictedCovers: 10},
			{ServiceDate: "2026-06-02", PredictedCovers: 30},
			{PredictedCovers: 5},
		}

		Convey("Then the peak date should come from the alternate field", func() {
			So(forecast.Summarize(preds).PeakDay.Date, ShouldEqual, "2026-06-02")
		})
	})

	Convey("Given a peak record without any date", t, func() {
		preds := []model.PredictionRecord{{PredictedCovers: 7}}

		Convey("Then the peak date should be empty", func() {
			So(forecast.Summarize(preds).PeakDay, ShouldResemble, forecast.PeakDay{Date: "", Covers: 7})
		})
	})

	Convey("Given averages needing rounding", t, func() {
		preds := []model.PredictionRecord{
			{PredictedCovers: 10, Confidence: 0.333},
			{PredictedCovers: 11, Confidence: 0.334},
		}
		s := forecast.Summarize(preds)

		Convey("Then daily average and confidence should be rounded", func() {
			So(s.DailyAvg, ShouldEqual, 11) // 10.5 rounds up
			So(s.AvgConfidence, ShouldAlmostEqual, 0.33, 1e-9)
		})
	})
}
