package bridge

import "errors"

// Sentinel errors for bridge operations. Connection-level errors
// (mqtt.ErrNotConnected, mqtt.ErrPublishFailed) pass through from the
// underlying client unchanged.
var (
	// ErrRateLimited is returned when a publish would exceed the
	// configured messages-per-minute ceiling.
	ErrRateLimited = errors.New("bridge: publish rate limit exceeded")

	// ErrUnknownChannel is returned for a channel with no feed mapping.
	ErrUnknownChannel = errors.New("bridge: unknown channel")

	// ErrQueueFull is returned when the outbound publish queue is full.
	ErrQueueFull = errors.New("bridge: publish queue full")
)
