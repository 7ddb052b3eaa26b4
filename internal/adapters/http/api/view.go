package api

import (
	"net/http"
	"strings"

	"github.com/okian/coverscope/internal/domain/model"
	"github.com/okian/coverscope/internal/domain/navigation"
)

// ViewHandler serves the current forecast view.
type ViewHandler struct {
	deps Dependencies
}

// NewViewHandler creates a new view handler.
func NewViewHandler(deps Dependencies) *ViewHandler {
	return &ViewHandler{deps: deps}
}

// HandleGetView handles GET /api/view requests.
func (h *ViewHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	env, err := h.deps.View(r.Context())
	writeEnvelope(w, "get view", env, err)
}

// NavigationHandler moves the cursor.
type NavigationHandler struct {
	deps Dependencies
}

// NewNavigationHandler creates a new navigation handler.
func NewNavigationHandler(deps Dependencies) *NavigationHandler {
	return &NavigationHandler{deps: deps}
}

// HandleNavigate handles POST /api/navigation/{previous|next|today}.
func (h *NavigationHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	const op = "navigate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	action := navigation.Action(strings.TrimPrefix(r.URL.Path, "/api/navigation/"))
	switch action {
	case navigation.ActionPrevious, navigation.ActionNext, navigation.ActionToday:
	default:
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrBadRequest))
		return
	}
	env, err := h.deps.Navigate(r.Context(), action)
	writeEnvelope(w, op, env, err)
}

type granularityRequest struct {
	Granularity string `json:"granularity"`
}

// HandleSetGranularity handles POST /api/navigation/granularity.
func (h *NavigationHandler) HandleSetGranularity(w http.ResponseWriter, r *http.Request) {
	const op = "set granularity"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req granularityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	g, err := model.ParseGranularity(req.Granularity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	env, err := h.deps.SetGranularity(r.Context(), g)
	writeEnvelope(w, op, env, err)
}
