package ratelimiter

import "errors"

// Package-level error definitions for rate limiter operations.
var (
	ErrInvalidConfig    = errors.New("invalid rate limit configuration")
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
