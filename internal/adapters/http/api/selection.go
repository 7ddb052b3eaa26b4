package api

import (
	"net/http"

	"github.com/okian/coverscope/internal/app"
	"github.com/okian/coverscope/internal/domain/model"
)

// SelectionHandler lists restaurants and changes the selection.
type SelectionHandler struct {
	deps Dependencies
}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler(deps Dependencies) *SelectionHandler {
	return &SelectionHandler{deps: deps}
}

type restaurantsResponse struct {
	Restaurants  []model.Restaurant  `json:"restaurants"`
	ServiceTypes []model.ServiceType `json:"service_types"`
	Selection    app.Selection       `json:"selection"`
}

// HandleListRestaurants handles GET /api/restaurants.
func (h *SelectionHandler) HandleListRestaurants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, restaurantsResponse{
		Restaurants:  h.deps.Restaurants(),
		ServiceTypes: model.ServiceTypes,
		Selection:    h.deps.Selection(),
	})
}

// selectionRequest: absent fields are kept, an empty restaurant_id clears
// the restaurant.
type selectionRequest struct {
	RestaurantID *string `json:"restaurant_id"`
	ServiceType  *string `json:"service_type"`
}

// HandleSelect handles POST /api/selection.
func (h *SelectionHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	const op = "select"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req selectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.RestaurantID == nil && req.ServiceType == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	ch := app.SelectionChange{RestaurantID: req.RestaurantID}
	if req.ServiceType != nil {
		st, err := model.ParseServiceType(*req.ServiceType)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		ch.ServiceType = &st
	}

	env, err := h.deps.Select(r.Context(), ch)
	writeEnvelope(w, op, env, err)
}

// ProfileHandler serves the selected restaurant profile.
type ProfileHandler struct {
	deps Dependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps Dependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

// HandleGetProfile handles GET /api/profile. The profile is loaded on first
// request when a restaurant is selected.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	env := h.deps.Profile()
	sel := h.deps.Selection()
	if !sel.Ready() {
		writeJSON(w, http.StatusOK, app.ProfileEnvelope{})
		return
	}
	if env.Loading || env.RestaurantID == sel.RestaurantID {
		writeJSON(w, http.StatusOK, env)
		return
	}

	env, err := h.deps.LoadProfile(r.Context())
	if err != nil {
		status, code := classify(err)
		if status == http.StatusServiceUnavailable || status == http.StatusInternalServerError {
			writeError(w, status, code, Wrap("get profile", err))
			return
		}
		writeJSON(w, status, env)
		return
	}
	writeJSON(w, http.StatusOK, env)
}
