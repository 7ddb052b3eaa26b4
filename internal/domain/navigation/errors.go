package navigation

import "errors"

// Sentinel kinds for navigation errors.
var (
	ErrUnknownAction = errors.New("unknown navigation action")
)
