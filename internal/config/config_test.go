package config_test

import (
	"testing"
	"time"

	"github.com/okian/coverscope/internal/config"
	"github.com/okian/coverscope/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.APIURL, convey.ShouldEqual, "http://localhost:8000")
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.BreakerOpenTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.RangeMargin, convey.ShouldEqual, 0.15)
			convey.So(cfg.DefaultRestaurant, convey.ShouldEqual, "hotel_main")
			convey.So(cfg.ServiceType(), convey.ShouldEqual, model.ServiceDinner)
		})

		convey.Convey("Then the default restaurant list should hold the three outlets", func() {
			ids := []string{}
			for _, r := range config.DefaultRestaurants() {
				ids = append(ids, r.ID)
			}
			convey.So(ids, convey.ShouldResemble, []string{"hotel_main", "hotel_bar", "hotel_terrace"})
		})

		convey.Convey("Then a bad service type should fall back to dinner", func() {
			cfg.DefaultServiceType = "supper"
			convey.So(cfg.ServiceType(), convey.ShouldEqual, model.ServiceDinner)
		})
	})
}
