package app

import "errors"

// Sentinel kinds for session errors.
var (
	ErrNoRestaurant      = errors.New("restaurant must be selected before making predictions")
	ErrNotStarted        = errors.New("session not started")
	ErrUnknownRestaurant = errors.New("unknown restaurant")
	ErrInvalidInput      = errors.New("invalid input")
)

// PreconditionError is returned when an operation needs a selected
// restaurant and none is set.
type PreconditionError struct {
	Op string
}

func (e *PreconditionError) Error() string {
	return e.Op + ": " + ErrNoRestaurant.Error()
}

// Is matches ErrNoRestaurant.
func (e *PreconditionError) Is(target error) bool { return target == ErrNoRestaurant }
