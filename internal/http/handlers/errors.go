// Package handlers defines HTTP-layer error codes used across endpoints.
//
// The codes are a stable, machine-readable taxonomy supplementing the HTTP
// status and the human-readable message in the error envelope. Handlers pick
// the most specific code and pass it to fail().
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeTrackFailed = "track_failed"
)
