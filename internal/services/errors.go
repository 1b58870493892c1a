// Package services implements the business logic for view tracking. This
// file centralizes service-level error values so they can be consistently
// returned by service methods and mapped to transport responses by callers.
package services

import "errors"

var (
	// ErrInvalidPost is returned when a post id is absent or non-positive.
	// It is a precondition violation: the service fails fast without
	// touching the store.
	ErrInvalidPost = errors.New("post id must be positive")
)
