package services

import "errors"

// Service error taxonomy. Handlers map these to HTTP status codes; anything
// else that escapes a store call is treated as a storage failure (500).
var (
	// ErrNotFound means no pod exists with the requested id.
	ErrNotFound = errors.New("pod not found")

	// ErrConflict means a check-in was attempted on an unavailable pod.
	ErrConflict = errors.New("pod is not available")
)
