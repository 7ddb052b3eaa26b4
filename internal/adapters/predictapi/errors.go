package predictapi

import (
	"errors"
	"fmt"
)

// Sentinel kinds for fetch boundary errors.
var (
	ErrRequest    = errors.New("prediction api request failed")
	ErrNotFound   = errors.New("not found")
	ErrInvalidURL = errors.New("invalid prediction api url")
)

// RequestError reports a failed call to the prediction API: a transport
// failure, a non-2xx status or an open circuit breaker.
type RequestError struct {
	Op      string // human readable operation, e.g. "batch prediction"
	Status  int    // HTTP status, 0 when no response was received
	Message string // server supplied text or transport error text
	Err     error
}

func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s failed: %d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *RequestError) Unwrap() error { return e.Err }

// Is matches ErrRequest.
func (e *RequestError) Is(target error) bool { return target == ErrRequest }

// NotFoundError is returned when the API answers 404 for a named lookup.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("restaurant %q not found", e.Identifier)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StatusError is the cause of a RequestError built from a non-2xx reply.
type StatusError int

func (s StatusError) Error() string {
	return fmt.Sprintf("status %d", int(s))
}
