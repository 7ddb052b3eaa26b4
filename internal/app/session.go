// Package app holds the forecast session: the current selection, the
// navigation cursor and the view handed to the rendering layer.
//
// Every refresh takes a generation token under the session lock, releases
// the lock while fetching and applies the result only if the token is still
// current. Superseded results are dropped.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/coverscope/internal/domain/forecast"
	"github.com/okian/coverscope/internal/domain/model"
	"github.com/okian/coverscope/internal/domain/navigation"
	"github.com/okian/coverscope/pkg/logger"
	"github.com/okian/coverscope/pkg/metrics"
)

// Fetcher resolves predictions and profiles from the prediction API.
type Fetcher interface {
	FetchDay(ctx context.Context, restaurantID, date string, st model.ServiceType) (model.PredictionRecord, error)
	FetchBatch(ctx context.Context, restaurantID string, dates []string, st model.ServiceType) (model.BatchResponse, error)
	FetchProfile(ctx context.Context, name string) (model.RestaurantProfile, error)
}

// Session implements the dependencies of the HTTP API.
type Session struct {
	mu sync.RWMutex

	fetcher     Fetcher
	transformer *forecast.Transformer
	navOpts     []navigation.Option
	restaurants []model.Restaurant
	defaults    Selection

	// State, valid while started.
	started    bool
	nav        *navigation.Controller
	selection  Selection
	generation uint64
	view       ViewEnvelope
	loaded     bool
	profileGen uint64
	profile    ProfileEnvelope

	// Counters reported by GetStats.
	refreshes      int
	failures       int
	staleDiscarded int
	navigations    int

	logger logger.Logger
}

// New constructs a Session that fetches through f.
func New(f Fetcher, opts ...Option) *Session {
	s := &Session{
		fetcher:     f,
		transformer: forecast.NewTransformer(nil),
		restaurants: []model.Restaurant{
			{ID: "hotel_main", Name: "Main Restaurant"},
		},
		defaults: Selection{RestaurantID: "hotel_main", ServiceType: model.ServiceDinner},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the selection and the navigation cursor.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.defaults.RestaurantID != "" && !s.knownLocked(s.defaults.RestaurantID) {
		return fmt.Errorf("%w: %q", ErrUnknownRestaurant, s.defaults.RestaurantID)
	}

	s.nav = navigation.New(s.navOpts...)
	s.selection = s.defaults
	s.view = ViewEnvelope{}
	s.loaded = false
	s.profile = ProfileEnvelope{}
	s.started = true

	st := s.nav.State()
	s.logger.Info(ctx, "forecast session started",
		logger.String("restaurant", s.selection.RestaurantID),
		logger.String("service_type", string(s.selection.ServiceType)),
		logger.String("granularity", string(st.Granularity)),
		logger.String("anchor", st.AnchorISO()),
	)
	return nil
}

// Stop tears the selection down. In-flight fetches finish but their
// results are discarded.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.generation++
	s.profileGen++
	s.selection = Selection{}
	s.started = false
	s.logger.Info(context.Background(), "forecast session stopped")
}

// Restaurants returns the selectable restaurants.
func (s *Session) Restaurants() []model.Restaurant {
	return append([]model.Restaurant(nil), s.restaurants...)
}

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Cursor returns the current navigation state.
func (s *Session) Cursor() (Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return Cursor{}, ErrNotStarted
	}
	return cursorOf(s.nav.State()), nil
}

// View returns the current envelope, loading it first when nothing was
// requested yet.
func (s *Session) View(ctx context.Context) (ViewEnvelope, error) {
	s.mu.Lock()
	if s.started && !s.loaded && !s.view.Loading {
		req, err := s.beginLocked("view")
		s.mu.Unlock()
		if err != nil {
			return s.snapshot(), err
		}
		return s.complete(ctx, req)
	}
	defer s.mu.Unlock()
	if !s.started {
		return ViewEnvelope{}, ErrNotStarted
	}
	return s.view, nil
}

// Refresh reloads the view for the current cursor and selection.
func (s *Session) Refresh(ctx context.Context) (ViewEnvelope, error) {
	return s.mutate(ctx, "refresh", func() error { return nil })
}

// Navigate applies a cursor action and reloads the view.
func (s *Session) Navigate(ctx context.Context, a navigation.Action) (ViewEnvelope, error) {
	return s.mutate(ctx, "navigate", func() error {
		if err := s.nav.Apply(a); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		s.navigations++
		metrics.RecordNavigation(string(a))
		return nil
	})
}

// SetGranularity switches the window size and reloads the view.
func (s *Session) SetGranularity(ctx context.Context, g model.Granularity) (ViewEnvelope, error) {
	return s.mutate(ctx, "set granularity", func() error {
		if err := s.nav.SetGranularity(g); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil
	})
}

// SelectionChange lists the fields to update; nil fields are kept.
type SelectionChange struct {
	RestaurantID *string
	ServiceType  *model.ServiceType
}

// Select updates the selection. A restaurant change reloads the profile.
// The view is reloaded afterwards; with no restaurant selected the view
// reports the precondition error.
func (s *Session) Select(ctx context.Context, ch SelectionChange) (ViewEnvelope, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ViewEnvelope{}, ErrNotStarted
	}
	next := s.selection
	if ch.RestaurantID != nil {
		if id := *ch.RestaurantID; id != "" && !s.knownLocked(id) {
			s.mu.Unlock()
			return s.snapshot(), fmt.Errorf("%w: %q", ErrUnknownRestaurant, id)
		}
		next.RestaurantID = *ch.RestaurantID
	}
	if ch.ServiceType != nil {
		if !ch.ServiceType.Valid() {
			s.mu.Unlock()
			return s.snapshot(), fmt.Errorf("%w: %w: %q", ErrInvalidInput, model.ErrUnknownServiceType, *ch.ServiceType)
		}
		next.ServiceType = *ch.ServiceType
	}
	restaurantChanged := next.RestaurantID != s.selection.RestaurantID
	if next != s.selection {
		// Results still in flight belong to the old selection.
		s.generation++
		s.view.Loading = true
	}
	s.selection = next
	s.mu.Unlock()

	s.logger.Info(ctx, "selection changed",
		logger.String("restaurant", next.RestaurantID),
		logger.String("service_type", string(next.ServiceType)),
	)
	if restaurantChanged {
		_, _ = s.LoadProfile(ctx)
	}
	return s.Refresh(ctx)
}

// mutate runs change under the lock and then reloads the view.
func (s *Session) mutate(ctx context.Context, op string, change func() error) (ViewEnvelope, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ViewEnvelope{}, ErrNotStarted
	}
	if err := change(); err != nil {
		s.mu.Unlock()
		return s.snapshot(), err
	}
	req, err := s.beginLocked(op)
	s.mu.Unlock()
	if err != nil {
		return s.snapshot(), err
	}
	return s.complete(ctx, req)
}

type viewRequest struct {
	generation uint64
	state      navigation.State
	dates      []string
	selection  Selection
}

// beginLocked takes a new generation and flags the view as loading.
func (s *Session) beginLocked(op string) (viewRequest, error) {
	s.generation++
	if !s.selection.Ready() {
		metrics.RecordPreconditionFailure()
		err := &PreconditionError{Op: op}
		s.view = ViewEnvelope{Error: err.Error()}
		return viewRequest{}, err
	}

	state := s.nav.State()
	dates, err := s.nav.Dates()
	if err != nil {
		s.view = ViewEnvelope{Error: err.Error()}
		return viewRequest{}, err
	}
	s.view.Loading = true
	s.view.Error = ""
	return viewRequest{
		generation: s.generation,
		state:      state,
		dates:      dates,
		selection:  s.selection,
	}, nil
}

// complete fetches outside the lock and applies the result if req is
// still the latest request.
func (s *Session) complete(ctx context.Context, req viewRequest) (ViewEnvelope, error) {
	data, err := s.fetch(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.generation != s.generation {
		s.staleDiscarded++
		metrics.RecordStaleDiscarded("forecast")
		s.logger.Debug(ctx, "discarding stale view result",
			logger.Int("generation", int(req.generation)),
			logger.Int("current", int(s.generation)),
		)
		return s.view, nil
	}

	s.refreshes++
	s.loaded = true
	granularity := string(req.state.Granularity)
	if err != nil {
		s.failures++
		metrics.RecordViewRefresh(granularity, "error")
		s.logger.Warn(ctx, "view refresh failed",
			logger.String("restaurant", req.selection.RestaurantID),
			logger.String("granularity", granularity),
			logger.String("anchor", req.state.AnchorISO()),
			logger.Error(err),
		)
		s.view = ViewEnvelope{Error: err.Error()}
		return s.view, err
	}

	metrics.RecordViewRefresh(granularity, "ok")
	s.view = ViewEnvelope{Data: data}
	return s.view, nil
}

func (s *Session) fetch(ctx context.Context, req viewRequest) (*ViewData, error) {
	sel := req.selection
	data := &ViewData{
		Cursor:    cursorOf(req.state),
		Dates:     req.dates,
		Selection: sel,
	}

	if req.state.Granularity == model.Day {
		rec, err := s.fetcher.FetchDay(ctx, sel.RestaurantID, req.dates[0], sel.ServiceType)
		if err != nil {
			return nil, err
		}
		data.Day = &DayView{
			Display:    s.transformer.Transform(rec),
			Reasoning:  rec.Reasoning,
			Prediction: rec,
		}
		return data, nil
	}

	resp, err := s.fetcher.FetchBatch(ctx, sel.RestaurantID, req.dates, sel.ServiceType)
	if err != nil {
		return nil, err
	}
	data.Batch = &BatchView{
		Predictions:  resp.Predictions,
		Summary:      forecast.Summarize(resp.Predictions),
		Count:        resp.Count,
		ServiceType:  resp.ServiceType,
		RestaurantID: resp.RestaurantID,
	}
	return data, nil
}

// Profile returns the current profile envelope.
func (s *Session) Profile() ProfileEnvelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// LoadProfile fetches the profile of the selected restaurant. With no
// restaurant selected the profile is cleared.
func (s *Session) LoadProfile(ctx context.Context) (ProfileEnvelope, error) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ProfileEnvelope{}, ErrNotStarted
	}
	s.profileGen++
	gen := s.profileGen
	id := s.selection.RestaurantID
	if id == "" {
		s.profile = ProfileEnvelope{}
		s.mu.Unlock()
		return ProfileEnvelope{}, nil
	}
	s.profile = ProfileEnvelope{Loading: true, RestaurantID: id}
	s.mu.Unlock()

	profile, err := s.fetcher.FetchProfile(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.profileGen {
		s.staleDiscarded++
		metrics.RecordStaleDiscarded("profile")
		s.logger.Debug(ctx, "discarding stale profile result", logger.String("restaurant", id))
		return s.profile, nil
	}
	if err != nil {
		s.logger.Warn(ctx, "profile load failed", logger.String("restaurant", id), logger.Error(err))
		s.profile = ProfileEnvelope{RestaurantID: id, Error: err.Error()}
		return s.profile, err
	}
	s.profile = ProfileEnvelope{RestaurantID: id, Data: &profile}
	return s.profile, nil
}

// GetStats returns session statistics for monitoring.
func (s *Session) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"restaurants":    len(s.restaurants),
		"generation":     s.generation,
		"refreshes":      s.refreshes,
		"failures":       s.failures,
		"staleDiscarded": s.staleDiscarded,
		"navigations":    s.navigations,
	}
	if s.started {
		st := s.nav.State()
		stats["restaurantId"] = s.selection.RestaurantID
		stats["serviceType"] = s.selection.ServiceType
		stats["granularity"] = st.Granularity
		stats["anchor"] = st.AnchorISO()
		stats["loading"] = s.view.Loading
	}
	return stats
}

func (s *Session) snapshot() ViewEnvelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

func (s *Session) knownLocked(id string) bool {
	for _, r := range s.restaurants {
		if r.ID == id {
			return true
		}
	}
	return false
}
