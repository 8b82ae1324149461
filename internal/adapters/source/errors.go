package source

import "errors"

// Sentinel errors returned by the backends.
var (
	// ErrUserNotFound means the configured remote username does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnavailable wraps failures to open or query a backend.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrNoBackend means no configured backend could be opened.
	ErrNoBackend = errors.New("no usable backend")
)
