package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
	pkgws "github.com/ridewave/dispatch/internal/pkg/websocket"
	"github.com/ridewave/dispatch/services/dispatch"
)

// driversNotifiedResponse answers a dispatched ride request.
type driversNotifiedResponse struct {
	BookingID       string `json:"bookingId"`
	DriversNotified int    `json:"driversNotified"`
	Message         string `json:"message"`
}

// noDriversResponse answers a request with an empty candidate set.
type noDriversResponse struct {
	BookingID string `json:"bookingId"`
	Message   string `json:"message"`
}

// acceptResponse answers a driver's accept, either way.
type acceptResponse struct {
	BookingID string `json:"bookingId"`
	Message   string `json:"message"`
}

func (h *Handler) handleRideRequest(s *pkgws.Session, data json.RawMessage) error {
	var ev models.RideRequestEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		logger.Warn("malformed ride:request payload",
			logger.String("rider_id", s.ID),
			logger.Err(err))
		return nil
	}
	if ev.UserID == "" {
		ev.UserID = s.ID
	}
	if ev.BookingID == "" || !ev.Pickup.Point().IsValid() || !ev.Dropoff.Point().IsValid() {
		logger.Warn("invalid ride:request fields",
			logger.String("rider_id", s.ID),
			logger.String("booking_id", ev.BookingID))
		return nil
	}

	result, err := h.uc.RequestRide(context.Background(), &ev)
	if errors.Is(err, dispatch.ErrNoDriversAvailable) {
		s.Enqueue(constants.EventRideNoDrivers, noDriversResponse{
			BookingID: ev.BookingID,
			Message:   "No drivers available near your pickup point",
		})
		return nil
	}
	if err != nil {
		h.manager.SendError(s, constants.ErrorStoreFailed, "Unable to dispatch your request")
		return err
	}

	s.Enqueue(constants.EventRideDriversNotified, driversNotifiedResponse{
		BookingID:       result.BookingID,
		DriversNotified: result.DriversNotified,
		Message:         "Nearby drivers have been notified",
	})
	return nil
}

func (h *Handler) handleRideAccept(s *pkgws.Session, data json.RawMessage) error {
	var ev models.AcceptEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		logger.Warn("malformed ride:accept payload",
			logger.String("driver_id", s.ID),
			logger.Err(err))
		return nil
	}
	if ev.BookingID == "" {
		logger.Warn("ride:accept missing booking id", logger.String("driver_id", s.ID))
		return nil
	}

	_, err := h.uc.AcceptRide(context.Background(), s.ID, ev.BookingID)
	if errors.Is(err, dispatch.ErrRideNotAvailable) || errors.Is(err, dispatch.ErrNotFound) {
		s.Enqueue(constants.EventRideAcceptFailed, acceptResponse{
			BookingID: ev.BookingID,
			Message:   "no longer available",
		})
		return nil
	}
	if err != nil {
		h.manager.SendError(s, constants.ErrorStoreFailed, "Unable to process accept")
		return err
	}

	s.Enqueue(constants.EventRideAcceptSuccess, acceptResponse{
		BookingID: ev.BookingID,
		Message:   "Ride is yours",
	})
	return nil
}

func (h *Handler) handleRideDecline(s *pkgws.Session, data json.RawMessage) error {
	var ev models.AcceptEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		logger.Warn("malformed ride:decline payload",
			logger.String("driver_id", s.ID),
			logger.Err(err))
		return nil
	}
	if ev.BookingID == "" {
		return nil
	}

	// Declines are informational; failures only get logged.
	return h.uc.DeclineRide(context.Background(), s.ID, ev.BookingID)
}
