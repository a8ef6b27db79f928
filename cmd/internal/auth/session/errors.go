package session

import "errors"

var (
	// ErrInvalidToken is returned when a token fails signature, shape or expiry checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
