package forecast_test

import (
	"testing"

	"github.com/okian/coverscope/internal/domain/forecast"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given confidence scores around the tier edges", t, func() {
		cases := []struct {
			score float64
			want  forecast.ConfidenceLabel
		}{
			{1.0, forecast.ConfidenceHigh},
			{0.8, forecast.ConfidenceHigh},
			{0.79999, forecast.ConfidenceMedium},
			{0.5, forecast.ConfidenceMedium},
			{0.49999, forecast.ConfidenceLow},
			{0, forecast.ConfidenceLow},
		}

		Convey("Then lower edges should be inclusive", func() {
			for _, c := range cases {
				So(forecast.Classify(c.score), ShouldEqual, c.want)
			}
		})
	})
}
