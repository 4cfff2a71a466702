package service

import "errors"

// Errors shared across services. Operation-specific errors live next to the
// service that returns them.
var (
	ErrAccountNotFound = errors.New("account not found")

	// ErrUnauthorized is returned when a requester lacks the role an
	// operation demands. Callers should treat it as final, not retryable.
	ErrUnauthorized = errors.New("requester lacks the required role")

	// ErrDispatchFailed wraps notification or blob transport failures. The
	// surrounding state change is rolled back, so the caller may retry the
	// whole operation.
	ErrDispatchFailed = errors.New("notification dispatch failed")
)
