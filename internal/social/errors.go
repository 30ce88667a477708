package social

import "errors"

// Domain error taxonomy. Boundary handlers translate these into their
// uniform response shapes; nothing in this package retries.
var (
	// ErrNotFound means a referenced user or entity is absent or inactive
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest means a required parameter is missing or malformed
	ErrInvalidRequest = errors.New("invalid request")

	// ErrValidation means a field-level constraint failed
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated means the operation requires a session
	ErrUnauthenticated = errors.New("unauthenticated")
)
