package airzone

import "errors"

// Sentinel errors surfaced by the synchronization engine.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrOffline is returned when a poll is attempted while the gateway
	// is unreachable. No network attempt is made.
	ErrOffline = errors.New("airzone: gateway offline")

	// ErrTimeout is returned when no matching response arrives within
	// the configured budget.
	ErrTimeout = errors.New("airzone: request timed out")

	// ErrPollFailed is returned when a poll attempt fails: the request
	// could not be published, or the response left the store without a
	// device inventory.
	ErrPollFailed = errors.New("airzone: polling failed")

	// ErrDeviceNotFound is returned when a snapshot is requested for an
	// identity the store does not hold.
	ErrDeviceNotFound = errors.New("airzone: device not found")
)
