package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/coverscope/internal/config"
	"github.com/okian/coverscope/pkg/logger"
)

func TestBuild(t *testing.T) {
	convey.Convey("Given a prediction API and a loaded config", t, func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"date": "2026-10-18", "predicted_covers": 64, "confidence": 0.91}`))
		}))
		defer upstream.Close()

		_ = os.Setenv("COVERSCOPE_API_URL", upstream.URL)
		_ = os.Setenv("COVERSCOPE_TIMEZONE", "UTC")
		defer func() {
			_ = os.Unsetenv("COVERSCOPE_API_URL")
			_ = os.Unsetenv("COVERSCOPE_TIMEZONE")
		}()

		ctx := context.Background()
		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When building the server", func() {
			srv, session, err := build(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer session.Stop()

			convey.Convey("Then every route should be wired", func() {
				convey.So(srv.Addr, convey.ShouldEqual, ":9080")
				convey.So(srv.WriteTimeout, convey.ShouldEqual, cfg.RequestTimeout()+writeTimeoutSlack)

				for path, want := range map[string]int{
					"/api/view":        http.StatusOK,
					"/api/restaurants": http.StatusOK,
					"/api/profile":     http.StatusOK,
					"/stats":           http.StatusOK,
					"/healthz":         http.StatusOK,
					"/api-docs":        http.StatusOK,
					"/openapi.yaml":    http.StatusOK,
				} {
					w := httptest.NewRecorder()
					srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, want)
				}
			})
		})

		convey.Convey("When the default restaurant is not selectable", func() {
			cfg.Restaurants = cfg.Restaurants[1:]
			_, _, err := build(ctx, cfg, logger.Nop())

			convey.Convey("Then build should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given a short-lived context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updater should return when it is done", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
