package usecase

import (
	"context"

	"github.com/ridewave/dispatch/internal/pkg/models"
)

// OnlineDrivers returns the online-and-available driver count from the
// projection.
func (uc *UC) OnlineDrivers(ctx context.Context) (int, error) {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()
	return uc.drivers.CountAvailable(sctx)
}

// PendingScheduled lists scheduled bookings for the control plane.
func (uc *UC) PendingScheduled(ctx context.Context) ([]*models.Booking, error) {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()
	return uc.bookings.PendingScheduled(sctx)
}

// RideStatus fetches one on-demand request by booking id.
func (uc *UC) RideStatus(ctx context.Context, bookingID string) (*models.RideRequest, error) {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()
	return uc.rides.GetRequest(sctx, bookingID)
}
