package dispatch

import "errors"

var (
	// ErrNoDriversAvailable means the geo query matched no eligible
	// drivers; no request row is created in that case.
	ErrNoDriversAvailable = errors.New("no drivers available")

	// ErrRideNotAvailable means the conditional claim lost the race or
	// the ride already left the pending state.
	ErrRideNotAvailable = errors.New("ride no longer available")

	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
)
