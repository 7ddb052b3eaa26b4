package probe

import "errors"

// Sentinel kinds for probe errors.
var (
	ErrInvalidConfig = errors.New("invalid probe config")
)
