package eventlog

import "errors"

// Sentinel errors for event log operations.
var (
	// ErrInvalidEntry is returned when appending an entry with no type.
	ErrInvalidEntry = errors.New("eventlog: entry type is required")

	// ErrInvalidRange is returned when a time range query has end before start.
	ErrInvalidRange = errors.New("eventlog: end must be after start")
)
