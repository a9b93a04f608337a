package config

import "errors"

var (
	// ErrParsingConfig wraps env-parsing failures, including missing
	// required variables and unreadable env files.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
