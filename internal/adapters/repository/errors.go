package repository

import "errors"

// Sentinel kinds for candidate store errors.
var (
	// ErrNotFound is returned by Storage.Read when nothing has been persisted yet.
	ErrNotFound = errors.New("candidate data not found")
	// ErrPersist wraps every failed Save.
	ErrPersist = errors.New("persist candidates")
	// ErrMalformed marks a persisted payload that does not decode into valid candidates.
	ErrMalformed = errors.New("malformed candidate data")
	// ErrUnavailable marks a load that could not consult storage; its
	// fallback result is never cached.
	ErrUnavailable = errors.New("candidate storage unavailable")
)
