// Package navigation owns the forecast cursor: the selected granularity and
// the anchor date, and how previous/next/today move them.
package navigation

import (
	"fmt"
	"time"

	"github.com/okian/coverscope/internal/domain/daterange"
	"github.com/okian/coverscope/internal/domain/model"
)

// Action names a cursor transition.
type Action string

// Cursor transitions.
const (
	ActionPrevious Action = "previous"
	ActionNext     Action = "next"
	ActionToday    Action = "today"
)

// State is the navigation cursor.
type State struct {
	Granularity model.Granularity
	Anchor      time.Time // civil date, midnight UTC
}

// AnchorISO returns the anchor as YYYY-MM-DD.
func (s State) AnchorISO() string {
	return daterange.Format(s.Anchor)
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithClock overrides the time source used by Today.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation sets the time zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// Controller moves the cursor. It is not safe for concurrent use; its owner
// serializes access.
type Controller struct {
	state State
	now   func() time.Time
	loc   *time.Location
}

// New creates a controller positioned on {day, today}.
func New(opts ...Option) *Controller {
	c := &Controller{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = State{Granularity: model.Day, Anchor: c.today()}
	return c
}

// State returns a copy of the cursor.
func (c *Controller) State() State {
	return c.state
}

// SetGranularity switches the window size, leaving the anchor unchanged.
func (c *Controller) SetGranularity(g model.Granularity) error {
	if !g.Valid() {
		return fmt.Errorf("%w: %q", model.ErrUnknownGranularity, g)
	}
	c.state.Granularity = g
	return nil
}

// Previous moves the anchor one window back.
func (c *Controller) Previous() {
	c.shift(-1)
}

// Next moves the anchor one window forward.
func (c *Controller) Next() {
	c.shift(1)
}

// Today resets the anchor to the current date.
func (c *Controller) Today() {
	c.state.Anchor = c.today()
}

// Apply runs the named transition.
func (c *Controller) Apply(a Action) error {
	switch a {
	case ActionPrevious:
		c.Previous()
	case ActionNext:
		c.Next()
	case ActionToday:
		c.Today()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	return nil
}

// shift moves by dir windows. Month moves land on the 1st so that a short
// target month cannot overflow into the one after it.
func (c *Controller) shift(dir int) {
	a := c.state.Anchor
	switch c.state.Granularity {
	case model.Week:
		c.state.Anchor = a.AddDate(0, 0, 7*dir)
	case model.Month:
		c.state.Anchor = time.Date(a.Year(), a.Month()+time.Month(dir), 1, 0, 0, 0, 0, time.UTC)
	default:
		c.state.Anchor = a.AddDate(0, 0, dir)
	}
}

// Dates expands the cursor into its ISO dates.
func (c *Controller) Dates() ([]string, error) {
	return daterange.Window(c.state.Anchor, c.state.Granularity)
}

// Label renders the cursor for a heading.
func (c *Controller) Label() string {
	return Label(c.state)
}

// Label renders s:
//
//	day   "Sunday, October 18, 2026"
//	week  "Oct 12 – Oct 18, 2026" (start year shown only when it differs)
//	month "October 2026"
func Label(s State) string {
	switch s.Granularity {
	case model.Week:
		start := daterange.WeekStart(s.Anchor)
		end := start.AddDate(0, 0, 6)
		startLayout := "Jan 2"
		if start.Year() != end.Year() {
			startLayout = "Jan 2, 2006"
		}
		return start.Format(startLayout) + " – " + end.Format("Jan 2, 2006")
	case model.Month:
		return s.Anchor.Format("January 2006")
	default:
		return s.Anchor.Format("Monday, January 2, 2006")
	}
}

func (c *Controller) today() time.Time {
	return daterange.Civil(c.now().In(c.loc))
}
