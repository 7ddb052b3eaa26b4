// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/coverscope/internal/adapters/predictapi"
	"github.com/okian/coverscope/internal/app"
	"github.com/okian/coverscope/internal/domain/model"
	"github.com/okian/coverscope/internal/domain/navigation"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the session implementation.
type Dependencies interface {
	View(ctx context.Context) (app.ViewEnvelope, error)
	Navigate(ctx context.Context, a navigation.Action) (app.ViewEnvelope, error)
	SetGranularity(ctx context.Context, g model.Granularity) (app.ViewEnvelope, error)
	Select(ctx context.Context, ch app.SelectionChange) (app.ViewEnvelope, error)

	Restaurants() []model.Restaurant
	Selection() app.Selection

	Profile() app.ProfileEnvelope
	LoadProfile(ctx context.Context) (app.ProfileEnvelope, error)
}

// Server wires HTTP routes for the forecast API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	viewHandler       *ViewHandler
	navigationHandler *NavigationHandler
	selectionHandler  *SelectionHandler
	profileHandler    *ProfileHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		viewHandler:       NewViewHandler(deps),
		navigationHandler: NewNavigationHandler(deps),
		selectionHandler:  NewSelectionHandler(deps),
		profileHandler:    NewProfileHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/view", MetricsMiddleware(s.viewHandler.HandleGetView, "view"))
	mux.HandleFunc("/api/navigation/granularity", MetricsMiddleware(s.navigationHandler.HandleSetGranularity, "granularity"))
	mux.HandleFunc("/api/navigation/", MetricsMiddleware(s.navigationHandler.HandleNavigate, "navigation"))
	mux.HandleFunc("/api/restaurants", MetricsMiddleware(s.selectionHandler.HandleListRestaurants, "restaurants"))
	mux.HandleFunc("/api/selection", MetricsMiddleware(s.selectionHandler.HandleSelect, "selection"))
	mux.HandleFunc("/api/profile", MetricsMiddleware(s.profileHandler.HandleGetProfile, "profile"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps session and fetch errors to a status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrNoRestaurant):
		return http.StatusConflict, "precondition_failed"
	case errors.Is(err, predictapi.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, app.ErrUnknownRestaurant),
		errors.Is(err, model.ErrUnknownGranularity),
		errors.Is(err, model.ErrUnknownServiceType):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, predictapi.ErrRequest):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, app.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeEnvelope answers with the view envelope. Fetch and precondition
// failures keep the envelope shape with the error message; rejected input
// gets a plain error response.
func writeEnvelope(w http.ResponseWriter, op string, env app.ViewEnvelope, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, env)
		return
	}
	status, code := classify(err)
	switch status {
	case http.StatusBadRequest, http.StatusServiceUnavailable, http.StatusInternalServerError:
		writeError(w, status, code, Wrap(op, err))
		return
	}
	if env.Error == "" {
		env.Error = err.Error()
	}
	env.Loading = false
	env.Data = nil
	writeJSON(w, status, env)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
