package constants

// WebSocket event types
const (
	// Common events
	EventError = "error"

	// Driver lifecycle events
	EventDriverConnect   = "driver:connect"
	EventDriverConnected = "driver:connected"
	EventDriverLocation  = "driver:location"
	EventDriverOffline   = "driver:offline"

	// Dispatch events
	EventRideRequest         = "ride:request"
	EventRideAlert           = "ride:alert"
	EventRideScheduledAlert  = "ride:scheduled_alert"
	EventRideDriversNotified = "ride:drivers_notified"
	EventRideNoDrivers       = "ride:no_drivers"

	// Arbitration events
	EventRideAccept        = "ride:accept"
	EventRideDecline       = "ride:decline"
	EventRideAcceptSuccess = "ride:accept_success"
	EventRideAcceptFailed  = "ride:accept_failed"
	EventRideTaken         = "ride:taken"

	// EventRideAcceptedPrefix is completed with the rider ID so a rider
	// client can subscribe to its own acceptance variant.
	EventRideAcceptedPrefix = "ride:accepted:"
)

// WebSocket error codes
const (
	ErrorInvalidFormat = "invalid_format"
	ErrorStoreFailed   = "store_failed"
)
