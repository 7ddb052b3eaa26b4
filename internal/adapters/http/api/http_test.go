package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/coverscope/internal/adapters/http/api"
	"github.com/okian/coverscope/internal/adapters/predictapi"
	"github.com/okian/coverscope/internal/app"
	"github.com/okian/coverscope/internal/domain/model"
	"github.com/okian/coverscope/internal/domain/navigation"
	"github.com/okian/coverscope/pkg/logger"
)

// stubFetcher returns fixed predictions or the configured errors.
type stubFetcher struct {
	err        error
	profileErr error
}

func (f *stubFetcher) FetchDay(_ context.Context, _, date string, _ model.ServiceType) (model.PredictionRecord, error) {
	if f.err != nil {
		return model.PredictionRecord{}, f.err
	}
	return model.PredictionRecord{Date: date, PredictedCovers: 90, Confidence: 0.6}, nil
}

func (f *stubFetcher) FetchBatch(_ context.Context, restaurantID string, dates []string, st model.ServiceType) (model.BatchResponse, error) {
	if f.err != nil {
		return model.BatchResponse{}, f.err
	}
	resp := model.BatchResponse{Count: len(dates), ServiceType: st, RestaurantID: restaurantID}
	for _, d := range dates {
		resp.Predictions = append(resp.Predictions, model.PredictionRecord{Date: d, PredictedCovers: 10, Confidence: 0.9})
	}
	return resp, nil
}

func (f *stubFetcher) FetchProfile(_ context.Context, name string) (model.RestaurantProfile, error) {
	if f.profileErr != nil {
		return model.RestaurantProfile{}, f.profileErr
	}
	return model.RestaurantProfile{OutletName: name, TotalSeats: 40}, nil
}

func newMux(f *stubFetcher) (*http.ServeMux, *app.Session) {
	s := app.New(f,
		app.WithLogger(logger.Nop()),
		app.WithNavigation(navigation.WithClock(func() time.Time {
			return time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
		}), navigation.WithLocation(time.UTC)),
		app.WithRestaurants([]model.Restaurant{
			{ID: "hotel_main", Name: "Main Restaurant"},
			{ID: "hotel_bar", Name: "Bar"},
		}),
	)
	So(s.Start(context.Background()), ShouldBeNil)
	mux := http.NewServeMux()
	api.NewServer(s, s).Register(context.Background(), mux)
	return mux, s
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestViewRoutes(t *testing.T) {
	Convey("Given an API server over a started session", t, func() {
		f := &stubFetcher{}
		mux, _ := newMux(f)

		Convey("When GET /api/view is called", func() {
			w := do(mux, http.MethodGet, "/api/view", "")

			Convey("Then the day envelope should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["loading"], ShouldEqual, false)
				data := body["data"].(map[string]any)
				So(data["granularity"], ShouldEqual, "day")
				So(data["anchor"], ShouldEqual, "2026-10-18")
				So(data["label"], ShouldEqual, "Sunday, October 18, 2026")
				display := data["day"].(map[string]any)["display"].(map[string]any)
				So(display["confidence_label"], ShouldEqual, "Medium")
				So(display["range_min"], ShouldEqual, 76.0)
				So(display["range_max"], ShouldEqual, 104.0)
			})
		})

		Convey("When the view method is wrong", func() {
			w := do(mux, http.MethodPost, "/api/view", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When switching to week and navigating back", func() {
			w := do(mux, http.MethodPost, "/api/navigation/granularity", `{"granularity":"week"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			w = do(mux, http.MethodPost, "/api/navigation/previous", "")

			Convey("Then the batch envelope should cover the previous week", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				data := decode(w)["data"].(map[string]any)
				So(data["label"], ShouldEqual, "Oct 5 – Oct 11, 2026")
				batch := data["batch"].(map[string]any)
				So(batch["count"], ShouldEqual, 7.0)
				So(batch["summary"].(map[string]any)["total_covers"], ShouldEqual, 70.0)
			})
		})

		Convey("When the granularity is invalid", func() {
			w := do(mux, http.MethodPost, "/api/navigation/granularity", `{"granularity":"year"}`)

			Convey("Then it should be a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the navigation action is unknown", func() {
			w := do(mux, http.MethodPost, "/api/navigation/sideways", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the prediction API fails", func() {
			f.err = &predictapi.RequestError{Op: "prediction", Status: 500, Message: "model not loaded"}
			w := do(mux, http.MethodPost, "/api/navigation/today", "")

			Convey("Then the envelope should carry the error with 502", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				body := decode(w)
				So(body["error"], ShouldEqual, "prediction failed: 500 model not loaded")
				So(body["data"], ShouldBeNil)
			})
		})
	})
}

func TestSelectionRoutes(t *testing.T) {
	Convey("Given an API server over a started session", t, func() {
		f := &stubFetcher{}
		mux, s := newMux(f)

		Convey("When listing restaurants", func() {
			w := do(mux, http.MethodGet, "/api/restaurants", "")

			Convey("Then the list and current selection should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(len(body["restaurants"].([]any)), ShouldEqual, 2)
				So(body["service_types"], ShouldResemble, []any{"lunch", "brunch", "dinner"})
				So(body["selection"].(map[string]any)["restaurant_id"], ShouldEqual, "hotel_main")
			})
		})

		Convey("When selecting the bar for lunch", func() {
			w := do(mux, http.MethodPost, "/api/selection", `{"restaurant_id":"hotel_bar","service_type":"Lunch"}`)

			Convey("Then the selection and profile should follow", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(s.Selection(), ShouldResemble, app.Selection{RestaurantID: "hotel_bar", ServiceType: model.ServiceLunch})

				p := do(mux, http.MethodGet, "/api/profile", "")
				So(p.Code, ShouldEqual, http.StatusOK)
				So(decode(p)["data"].(map[string]any)["outlet_name"], ShouldEqual, "hotel_bar")
			})
		})

		Convey("When the selection body is invalid", func() {
			So(do(mux, http.MethodPost, "/api/selection", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/api/selection", `{"service_type":"supper"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/api/selection", `{"restaurant_id":"hotel_spa"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/api/selection", `not json`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the restaurant is cleared", func() {
			w := do(mux, http.MethodPost, "/api/selection", `{"restaurant_id":""}`)

			Convey("Then views should report the precondition with 409", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode(w)["error"], ShouldContainSubstring, "restaurant must be selected")
				So(do(mux, http.MethodGet, "/api/view", "").Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the profile is not found upstream", func() {
			f.profileErr = &predictapi.NotFoundError{Identifier: "hotel_main"}
			w := do(mux, http.MethodGet, "/api/profile", "")

			Convey("Then it should answer 404 with the envelope", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode(w)["error"], ShouldEqual, `restaurant "hotel_main" not found`)
			})
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given an API server over a started session", t, func() {
		mux, _ := newMux(&stubFetcher{})
		_ = do(mux, http.MethodGet, "/api/view", "")

		Convey("When GET /stats is called", func() {
			w := do(mux, http.MethodGet, "/stats", "")

			Convey("Then session statistics should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["started"], ShouldEqual, true)
				So(body["refreshes"], ShouldEqual, 1.0)
				So(body["restaurantId"], ShouldEqual, "hotel_main")
			})
		})

		Convey("When GET /healthz is called", func() {
			w := do(mux, http.MethodGet, "/healthz", "")

			Convey("Then Prometheus metrics should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "coverscope_forecast_view_refreshes_total")
			})
		})
	})
}
