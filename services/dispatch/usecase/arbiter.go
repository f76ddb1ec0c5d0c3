package usecase

import (
	"context"
	"errors"
	"strconv"

	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/ridewave/dispatch/services/dispatch"
)

// takenNotice is the payload fanned to losing drivers.
type takenNotice struct {
	BookingID string `json:"bookingId"`
}

// AcceptRide arbitrates a driver's accept. The claim is a single
// conditional update, so exactly one concurrent accept per booking can
// win. The winner is marked busy, the rider notified on its own channel
// and the losing notified drivers told the ride is taken.
func (uc *UC) AcceptRide(ctx context.Context, driverID, bookingID string) (*models.AcceptResult, error) {
	sctx, cancel := uc.storeCtx(ctx)
	req, err := uc.rides.ClaimRequest(sctx, bookingID, driverID)
	cancel()

	if errors.Is(err, dispatch.ErrNotFound) {
		// Not an on-demand request; it may be a woken scheduled booking.
		return uc.acceptScheduled(ctx, driverID, bookingID)
	}
	if err != nil {
		return nil, err
	}

	result := uc.settleWin(ctx, driverID, bookingID, req.RiderID, req.NotifiedDrivers)

	uc.publish(constants.TopicRideAccepted, result)
	logger.Info("ride claimed",
		logger.String("booking_id", bookingID),
		logger.String("driver_id", driverID))
	return result, nil
}

func (uc *UC) acceptScheduled(ctx context.Context, driverID, bookingID string) (*models.AcceptResult, error) {
	sctx, cancel := uc.storeCtx(ctx)
	booking, err := uc.bookings.ClaimBooking(sctx, bookingID, driverID)
	cancel()
	if err != nil {
		return nil, err
	}

	result := uc.settleWin(ctx, driverID, bookingID, booking.RiderID, booking.MatchedDrivers)

	uc.publish(constants.TopicRideAccepted, result)
	logger.Info("scheduled booking claimed",
		logger.String("booking_id", bookingID),
		logger.String("driver_id", driverID))
	return result, nil
}

// settleWin applies the post-claim effects. Each is best-effort: the
// claim already decided the outcome and is never rolled back here.
func (uc *UC) settleWin(ctx context.Context, driverID, bookingID, riderID string, notified []string) *models.AcceptResult {
	sctx, cancel := uc.storeCtx(ctx)
	if err := uc.drivers.SetBusy(sctx, driverID); err != nil {
		logger.Warn("failed to mark winning driver busy",
			logger.String("driver_id", driverID),
			logger.Err(err))
	}
	cancel()

	result := &models.AcceptResult{
		BookingID: bookingID,
		RiderID:   riderID,
		DriverID:  driverID,
	}

	sctx, cancel = uc.storeCtx(ctx)
	driver, err := uc.drivers.GetDriver(sctx, driverID)
	cancel()
	if err != nil {
		logger.Warn("failed to load winning driver profile",
			logger.String("driver_id", driverID),
			logger.Err(err))
	} else {
		result.DriverName = driver.Name
		result.DriverRating = strconv.FormatFloat(driver.Rating, 'f', 1, 64)
		result.VehicleType = driver.VehicleType
	}

	// The rider id is encoded into the event name so the rider client
	// only sees its own acceptance.
	uc.notifier.Send(riderID, constants.EventRideAcceptedPrefix+riderID, result)

	for _, otherID := range notified {
		if otherID == driverID {
			continue
		}
		uc.notifier.Send(otherID, constants.EventRideTaken, takenNotice{BookingID: bookingID})
	}

	return result
}

// DeclineRide removes the driver from the request's notified set. It is
// informational only and never cancels the request.
func (uc *UC) DeclineRide(ctx context.Context, driverID, bookingID string) error {
	sctx, cancel := uc.storeCtx(ctx)
	defer cancel()

	if err := uc.rides.RemoveNotifiedDriver(sctx, bookingID, driverID); err != nil {
		logger.Warn("failed to record decline",
			logger.String("booking_id", bookingID),
			logger.String("driver_id", driverID),
			logger.Err(err))
		return err
	}

	logger.Debug("driver declined",
		logger.String("booking_id", bookingID),
		logger.String("driver_id", driverID))
	return nil
}
