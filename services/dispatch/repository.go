package dispatch

import (
	"context"

	"github.com/ridewave/dispatch/internal/pkg/models"
)

// DriverRepo maintains the driver projection: the Redis geo index for
// dispatch queries plus the Postgres profile row.
type DriverRepo interface {
	UpsertPresence(ctx context.Context, driver *models.Driver) error
	UpdateLocation(ctx context.Context, driverID string, loc models.Location) error
	MarkOffline(ctx context.Context, driverID string) error
	SetBusy(ctx context.Context, driverID string) error
	ClearConnection(ctx context.Context, driverID string) error
	GetDriver(ctx context.Context, driverID string) (*models.Driver, error)
	FindNearby(ctx context.Context, point models.Location, radiusKm float64, limit int) ([]*models.NearbyDriver, error)
	CountAvailable(ctx context.Context) (int, error)
}

// RideRepo owns the ride_requests table. ClaimRequest is the single
// atomic compare-and-set that arbitrates concurrent accepts.
type RideRepo interface {
	CreateRequest(ctx context.Context, req *models.RideRequest) error
	ClaimRequest(ctx context.Context, bookingID, driverID string) (*models.RideRequest, error)
	RemoveNotifiedDriver(ctx context.Context, bookingID, driverID string) error
	GetRequest(ctx context.Context, bookingID string) (*models.RideRequest, error)
}

// BookingRepo owns the scheduled bookings table.
type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UnnotifiedScheduled(ctx context.Context) ([]*models.Booking, error)
	MarkNotified(ctx context.Context, bookingID string, matchedDrivers []string) error
	ClaimBooking(ctx context.Context, bookingID, driverID string) (*models.Booking, error)
	PendingScheduled(ctx context.Context) ([]*models.Booking, error)
}
