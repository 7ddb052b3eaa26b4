package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/coverscope/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPredictionRecord_Normalize(t *testing.T) {
	Convey("Given predictions decoded from upstream payloads", t, func() {
		var canonical, alternate, both, neither model.PredictionRecord
		So(json.Unmarshal([]byte(`{"date":"2026-03-14","predicted_covers":90,"confidence":0.8}`), &canonical), ShouldBeNil)
		So(json.Unmarshal([]byte(`{"service_date":"2026-03-14","predicted_covers":90,"confidence":0.8}`), &alternate), ShouldBeNil)
		So(json.Unmarshal([]byte(`{"date":"2026-03-14","service_date":"2026-03-15","predicted_covers":90}`), &both), ShouldBeNil)
		So(json.Unmarshal([]byte(`{"predicted_covers":90}`), &neither), ShouldBeNil)

		Convey("When normalizing them", func() {
			canonical.Normalize()
			alternate.Normalize()
			both.Normalize()
			neither.Normalize()

			Convey("Then the alternate field should land in the canonical one", func() {
				So(alternate.Date, ShouldEqual, "2026-03-14")
				So(alternate.CanonicalDate(), ShouldEqual, canonical.CanonicalDate())
				So(alternate.Date, ShouldEqual, canonical.Date)
			})

			Convey("And an existing canonical date should win", func() {
				So(both.Date, ShouldEqual, "2026-03-14")
			})

			Convey("And a record without any date should stay empty", func() {
				So(neither.Date, ShouldEqual, "")
				So(neither.CanonicalDate(), ShouldEqual, "")
			})
		})

		Convey("When asking for the canonical date without normalizing", func() {
			Convey("Then the alternate field should be used as fallback", func() {
				So(alternate.CanonicalDate(), ShouldEqual, "2026-03-14")
			})
		})
	})
}

func TestBatchResponse_Normalize(t *testing.T) {
	Convey("Given a batch with mixed date fields", t, func() {
		b := model.BatchResponse{Predictions: []model.PredictionRecord{
			{Date: "2026-01-01"},
			{ServiceDate: "2026-01-02"},
		}}

		Convey("When normalizing the batch", func() {
			b.Normalize()

			Convey("Then every record should expose the canonical date", func() {
				So(b.Predictions[0].Date, ShouldEqual, "2026-01-01")
				So(b.Predictions[1].Date, ShouldEqual, "2026-01-02")
			})
		})
	})
}

func TestPredictionRecord_Interval(t *testing.T) {
	Convey("Given predictions with and without accuracy metrics", t, func() {
		Convey("When no metrics are present", func() {
			_, _, ok := model.PredictionRecord{PredictedCovers: 10}.Interval()
			So(ok, ShouldBeFalse)
		})

		Convey("When the interval has a single element", func() {
			p := model.PredictionRecord{AccuracyMetrics: &model.AccuracyMetrics{PredictionInterval: []float64{4}}}
			_, _, ok := p.Interval()
			So(ok, ShouldBeFalse)
		})

		Convey("When a two element interval is present", func() {
			p := model.PredictionRecord{AccuracyMetrics: &model.AccuracyMetrics{PredictionInterval: []float64{80, 120}}}
			low, high, ok := p.Interval()
			So(ok, ShouldBeTrue)
			So(low, ShouldEqual, 80)
			So(high, ShouldEqual, 120)
		})

		Convey("When the interval carries extra elements", func() {
			p := model.PredictionRecord{AccuracyMetrics: &model.AccuracyMetrics{PredictionInterval: []float64{70, 130, 0.95}}}
			low, high, ok := p.Interval()
			So(ok, ShouldBeTrue)
			So(low, ShouldEqual, 70)
			So(high, ShouldEqual, 130)
		})
	})
}

func TestPredictionRecord_Validate(t *testing.T) {
	Convey("Given prediction records", t, func() {
		Convey("When the record satisfies every invariant", func() {
			p := model.PredictionRecord{PredictedCovers: 100, Confidence: 0.9,
				AccuracyMetrics: &model.AccuracyMetrics{PredictionInterval: []float64{90, 110}}}
			So(p.Validate(), ShouldBeNil)
		})

		Convey("When covers are negative", func() {
			err := model.PredictionRecord{PredictedCovers: -1}.Validate()
			So(errors.Is(err, model.ErrInvalidPrediction), ShouldBeTrue)
		})

		Convey("When confidence is above one", func() {
			err := model.PredictionRecord{PredictedCovers: 1, Confidence: 1.2}.Validate()
			So(errors.Is(err, model.ErrInvalidPrediction), ShouldBeTrue)
		})

		Convey("When the interval does not bracket the covers", func() {
			p := model.PredictionRecord{PredictedCovers: 130, Confidence: 0.5,
				AccuracyMetrics: &model.AccuracyMetrics{PredictionInterval: []float64{90, 110}}}
			err := p.Validate()
			So(errors.Is(err, model.ErrInvalidPrediction), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "does not contain 130")
		})
	})
}
