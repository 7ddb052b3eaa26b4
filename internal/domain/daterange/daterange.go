// Package daterange expands a forecast window into the ISO calendar dates it
// covers.
//
// All arithmetic runs on civil dates pinned to midnight UTC so that DST
// transitions and month lengths never shift a day.
package daterange

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/coverscope/internal/domain/model"
)

// Layout is the ISO date format used on the wire.
const Layout = "2006-01-02"

const daysPerWeek = 7

// Sentinel kinds for date range errors.
var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidDate  = errors.New("invalid date")
)

// Civil strips the clock from t, keeping its calendar date in t's location.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Format renders the calendar date of t as YYYY-MM-DD.
func Format(t time.Time) string {
	return Civil(t).Format(Layout)
}

// WeekStart returns the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	c := Civil(t)
	// time.Sunday == 0; shift so Monday == 0.
	offset := (int(c.Weekday()) + 6) % daysPerWeek
	return c.AddDate(0, 0, -offset)
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Range returns days contiguous dates beginning at start.
func Range(start time.Time, days int) []string {
	if days <= 0 {
		return []string{}
	}
	first := Civil(start)
	out := make([]string, days)
	for i := range out {
		out[i] = first.AddDate(0, 0, i).Format(Layout)
	}
	return out
}

// Week returns the seven dates of the Monday-started week containing anchor.
func Week(anchor time.Time) []string {
	return Range(WeekStart(anchor), daysPerWeek)
}

// Month returns every date of the given month (1 = January).
func Month(year int, month time.Month) ([]string, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	return Range(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), DaysIn(year, month)), nil
}

// Window expands anchor into the dates of its day, week or month.
func Window(anchor time.Time, g model.Granularity) ([]string, error) {
	switch g {
	case model.Day:
		return []string{Format(anchor)}, nil
	case model.Week:
		return Week(anchor), nil
	case model.Month:
		return Month(anchor.Year(), anchor.Month())
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownGranularity, g)
	}
}
