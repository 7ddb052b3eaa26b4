package model

import "errors"

// Sentinel kinds for model validation and parsing.
var (
	ErrUnknownServiceType = errors.New("unknown service type")
	ErrUnknownGranularity = errors.New("unknown granularity")
	ErrInvalidPrediction  = errors.New("invalid prediction")
)
