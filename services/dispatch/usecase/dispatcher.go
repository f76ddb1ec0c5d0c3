package usecase

import (
	"context"
	"time"

	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/ridewave/dispatch/internal/utils"
	"github.com/ridewave/dispatch/services/dispatch"
)

// RequestRide runs one on-demand dispatch: geo query, request insert,
// personalized fan-out. The request row is committed before any alert
// goes out so a fast accept always finds something to claim.
func (uc *UC) RequestRide(ctx context.Context, ev *models.RideRequestEvent) (*models.DispatchResult, error) {
	radiusKm := uc.cfg.Dispatch.RadiusKm
	maxCandidates := uc.cfg.Dispatch.MaxCandidates

	sctx, cancel := uc.storeCtx(ctx)
	candidates, err := uc.drivers.FindNearby(sctx, ev.Pickup.Point(), radiusKm, maxCandidates)
	cancel()
	if err != nil {
		logger.Error("geo query failed",
			logger.String("booking_id", ev.BookingID),
			logger.Err(err))
		return nil, err
	}

	if len(candidates) == 0 {
		logger.Info("no drivers available",
			logger.String("booking_id", ev.BookingID),
			logger.Float64("radius_km", radiusKm))
		return nil, dispatch.ErrNoDriversAvailable
	}

	notified := make([]string, 0, len(candidates))
	for _, c := range candidates {
		notified = append(notified, c.DriverID)
	}

	req := &models.RideRequest{
		ID:              ev.BookingID,
		RiderID:         ev.UserID,
		RiderName:       ev.UserName,
		Pickup:          ev.Pickup,
		Dropoff:         ev.Dropoff,
		VehicleType:     ev.VehicleType,
		Fare:            ev.Fare,
		Status:          models.RideStatusPending,
		NotifiedDrivers: notified,
	}

	sctx, cancel = uc.storeCtx(ctx)
	err = uc.rides.CreateRequest(sctx, req)
	cancel()
	if err != nil {
		logger.Error("failed to persist ride request",
			logger.String("booking_id", ev.BookingID),
			logger.Err(err))
		return nil, err
	}

	delivered := uc.fanOut(ev, candidates)

	uc.publish(constants.TopicRideRequested, req)

	logger.Info("ride request dispatched",
		logger.String("booking_id", ev.BookingID),
		logger.Int("candidates", len(candidates)),
		logger.Int("delivered", delivered))

	return &models.DispatchResult{
		BookingID:       ev.BookingID,
		DriversNotified: delivered,
	}, nil
}

// fanOut sends a personalized alert to every candidate and returns the
// number of successful deliveries. Delivery is best-effort: an absent
// or slow session just means that driver is unreachable right now.
func (uc *UC) fanOut(ev *models.RideRequestEvent, candidates []*models.NearbyDriver) int {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	delivered := 0

	for _, c := range candidates {
		distanceKm := utils.CalculateDistanceKm(ev.Pickup.Point(), c.Location)
		alert := models.RideAlert{
			BookingID:              ev.BookingID,
			UserID:                 ev.UserID,
			UserName:               ev.UserName,
			Pickup:                 ev.Pickup,
			Dropoff:                ev.Dropoff,
			VehicleType:            ev.VehicleType,
			Fare:                   ev.Fare,
			Timestamp:              timestamp,
			DistanceKm:             utils.FormatDistanceKm(distanceKm),
			EstimatedPickupMinutes: utils.EstimatePickupMinutes(distanceKm),
		}

		if uc.notifier.Send(c.DriverID, constants.EventRideAlert, alert) {
			delivered++
		} else {
			logger.Debug("driver unreachable for alert",
				logger.String("booking_id", ev.BookingID),
				logger.String("driver_id", c.DriverID))
		}
	}
	return delivered
}
