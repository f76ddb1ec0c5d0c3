package dispatch

import (
	"context"

	"github.com/ridewave/dispatch/internal/pkg/models"
)

// DispatchUC is the dispatch service contract consumed by the WebSocket
// and HTTP handlers.
type DispatchUC interface {
	// Driver gateway
	DriverConnect(ctx context.Context, driverID, userID string, loc models.Location, connectionID string) error
	DriverLocation(ctx context.Context, driverID string, loc models.Location) error
	DriverOffline(ctx context.Context, driverID string) error
	DriverDisconnect(driverID string)

	// Request dispatch
	RequestRide(ctx context.Context, ev *models.RideRequestEvent) (*models.DispatchResult, error)

	// Acceptance arbitration
	AcceptRide(ctx context.Context, driverID, bookingID string) (*models.AcceptResult, error)
	DeclineRide(ctx context.Context, driverID, bookingID string) error

	// Scheduled-ride waker
	WakeScheduled(ctx context.Context) (int, error)

	// Diagnostics
	OnlineDrivers(ctx context.Context) (int, error)
	PendingScheduled(ctx context.Context) ([]*models.Booking, error)
	RideStatus(ctx context.Context, bookingID string) (*models.RideRequest, error)
}

// Notifier delivers events to connected sessions. Implemented by the
// session registry; delivery is best-effort and never blocks.
type Notifier interface {
	Send(id string, event string, payload interface{}) bool
	Count() int
}

// EventPublisher emits dispatch lifecycle events to the broker for
// downstream consumers. Publication failures never abort dispatch.
type EventPublisher interface {
	Publish(topic string, message interface{}) error
}
