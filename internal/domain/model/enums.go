package model

import (
	"fmt"
	"strings"
)

// ServiceType is the meal service a prediction is made for.
type ServiceType string

// Service types accepted by the prediction API.
const (
	ServiceLunch  ServiceType = "lunch"
	ServiceBrunch ServiceType = "brunch"
	ServiceDinner ServiceType = "dinner"
)

// ServiceTypes lists every valid service type in display order.
var ServiceTypes = []ServiceType{ServiceLunch, ServiceBrunch, ServiceDinner}

// ParseServiceType parses s case-insensitively.
func ParseServiceType(s string) (ServiceType, error) {
	st := ServiceType(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownServiceType, s)
	}
	return st, nil
}

// Valid reports whether st is one of the known service types.
func (st ServiceType) Valid() bool {
	switch st {
	case ServiceLunch, ServiceBrunch, ServiceDinner:
		return true
	}
	return false
}

// Granularity is the size of the forecast window.
type Granularity string

// Window granularities.
const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity parses s case-insensitively.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
	return g, nil
}

// Valid reports whether g is day, week or month.
func (g Granularity) Valid() bool {
	switch g {
	case Day, Week, Month:
		return true
	}
	return false
}
