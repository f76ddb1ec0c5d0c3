package websocket

import (
	"context"
	"encoding/json"

	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
	pkgws "github.com/ridewave/dispatch/internal/pkg/websocket"
)

// driverConnectRequest is the inbound driver:connect payload.
type driverConnectRequest struct {
	DriverID string          `json:"driverId"`
	UserID   string          `json:"userId"`
	Location models.Location `json:"location"`
}

// driverLocationRequest is the inbound driver:location payload.
type driverLocationRequest struct {
	DriverID string          `json:"driverId"`
	Location models.Location `json:"location"`
}

// driverConnectedResponse acknowledges a registration.
type driverConnectedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) handleDriverConnect(s *pkgws.Session, data json.RawMessage) error {
	var req driverConnectRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Warn("malformed driver:connect payload",
			logger.String("driver_id", s.ID),
			logger.Err(err))
		return nil
	}
	if !req.Location.IsValid() {
		logger.Warn("invalid coordinates on driver:connect",
			logger.String("driver_id", s.ID))
		return nil
	}

	// The session identity is authoritative; the payload's driverId is
	// informational only.
	err := h.uc.DriverConnect(context.Background(), s.ID, req.UserID, req.Location, s.ID)
	if err != nil {
		// The session is registered regardless, so the driver stays
		// reachable; it may miss geo queries until the next location
		// update succeeds.
		logger.Warn("driver projection write failed",
			logger.String("driver_id", s.ID),
			logger.Err(err))
	}

	s.Enqueue(constants.EventDriverConnected, driverConnectedResponse{
		Success: true,
		Message: "Driver registered for dispatch",
	})
	return nil
}

func (h *Handler) handleDriverLocation(s *pkgws.Session, data json.RawMessage) error {
	var req driverLocationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Warn("malformed driver:location payload",
			logger.String("driver_id", s.ID),
			logger.Err(err))
		return nil
	}
	if !req.Location.IsValid() {
		logger.Warn("invalid coordinates on driver:location",
			logger.String("driver_id", s.ID))
		return nil
	}

	return h.uc.DriverLocation(context.Background(), s.ID, req.Location)
}

func (h *Handler) handleDriverOffline(s *pkgws.Session) error {
	if err := h.uc.DriverOffline(context.Background(), s.ID); err != nil {
		h.manager.SendError(s, constants.ErrorStoreFailed, "Unable to go offline")
		return err
	}

	// Going offline ends the session; the read loop unblocks and the
	// manager unregisters it.
	s.Close()
	return nil
}
