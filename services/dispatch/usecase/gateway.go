package usecase

import (
	"context"

	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
)

// driverStatusEvent is published on the broker for driver lifecycle
// changes.
type driverStatusEvent struct {
	DriverID string           `json:"driverId"`
	Status   string           `json:"status"`
	Location *models.Location `json:"location,omitempty"`
}

// DriverConnect writes the online presence for a connecting driver. The
// session registry is updated by the transport layer before this runs,
// so a projection failure leaves the driver reachable; it just won't
// appear in geo queries until the next successful location update.
func (uc *UC) DriverConnect(ctx context.Context, driverID, userID string, loc models.Location, connectionID string) error {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()

	driver := &models.Driver{
		DriverID:     driverID,
		UserID:       userID,
		Status:       models.DriverStatusOnline,
		Available:    true,
		Location:     loc,
		ConnectionID: connectionID,
	}
	if err := uc.drivers.UpsertPresence(sctx, driver); err != nil {
		logger.Error("failed to record driver presence",
			logger.String("driver_id", driverID),
			logger.Err(err))
		return err
	}

	uc.publish(constants.TopicDriverStatus, driverStatusEvent{
		DriverID: driverID,
		Status:   models.DriverStatusOnline,
		Location: &loc,
	})

	logger.Info("driver online",
		logger.String("driver_id", driverID),
		logger.Float64("lat", loc.Latitude),
		logger.Float64("lng", loc.Longitude))
	return nil
}

// DriverLocation updates the driver's position only.
func (uc *UC) DriverLocation(ctx context.Context, driverID string, loc models.Location) error {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()

	if err := uc.drivers.UpdateLocation(sctx, driverID, loc); err != nil {
		logger.Error("failed to update driver location",
			logger.String("driver_id", driverID),
			logger.Err(err))
		return err
	}

	uc.publish(constants.TopicLocationUpdate, driverStatusEvent{
		DriverID: driverID,
		Status:   models.DriverStatusOnline,
		Location: &loc,
	})
	return nil
}

// DriverOffline takes the driver out of dispatch.
func (uc *UC) DriverOffline(ctx context.Context, driverID string) error {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()

	if err := uc.drivers.MarkOffline(sctx, driverID); err != nil {
		logger.Error("failed to mark driver offline",
			logger.String("driver_id", driverID),
			logger.Err(err))
		return err
	}

	uc.publish(constants.TopicDriverStatus, driverStatusEvent{
		DriverID: driverID,
		Status:   models.DriverStatusOffline,
	})

	logger.Info("driver offline", logger.String("driver_id", driverID))
	return nil
}

// DriverDisconnect records a transport drop. The status is untouched
// because an intentional reconnect may follow; only the cached
// connection id is cleared.
func (uc *UC) DriverDisconnect(driverID string) {
	sctx, cancel := uc.storeCtx(context.Background())
	defer cancel()

	if err := uc.drivers.ClearConnection(sctx, driverID); err != nil {
		logger.Warn("failed to clear driver connection",
			logger.String("driver_id", driverID),
			logger.Err(err))
	}
}
