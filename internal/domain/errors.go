package domain

import "errors"

// Sentinel errors shared across entities. Services wrap storage errors with
// context; controllers map these to HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
