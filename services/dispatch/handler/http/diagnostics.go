package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/ridewave/dispatch/services/dispatch"
)

// Handler serves the dispatch control-plane endpoints. Everything here
// is operator-facing; drivers and riders only ever touch the sockets.
type Handler struct {
	uc       dispatch.DispatchUC
	notifier dispatch.Notifier
}

// NewHandler creates the control-plane handler.
func NewHandler(uc dispatch.DispatchUC, notifier dispatch.Notifier) *Handler {
	return &Handler{uc: uc, notifier: notifier}
}

// Health reports liveness plus the live session count.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"connections": h.notifier.Count(),
		"serverTime":  time.Now().UTC().Format(time.RFC3339),
	})
}

// OnlineDrivers reports the available-driver count from the projection.
func (h *Handler) OnlineDrivers(c echo.Context) error {
	count, err := h.uc.OnlineDrivers(c.Request().Context())
	if err != nil {
		logger.Error("online driver count failed", logger.Err(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "driver projection unavailable",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"onlineDrivers": count,
	})
}

// PendingScheduled lists scheduled bookings awaiting their alert window.
func (h *Handler) PendingScheduled(c echo.Context) error {
	bookings, err := h.uc.PendingScheduled(c.Request().Context())
	if err != nil {
		logger.Error("pending scheduled scan failed", logger.Err(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "booking store unavailable",
		})
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":    len(bookings),
		"bookings": bookings,
	})
}

// RideStatus shows one request's arbitration state.
func (h *Handler) RideStatus(c echo.Context) error {
	req, err := h.uc.RideStatus(c.Request().Context(), c.Param("id"))
	if errors.Is(err, dispatch.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "ride request not found",
		})
	}
	if err != nil {
		logger.Error("ride status lookup failed",
			logger.String("booking_id", c.Param("id")),
			logger.Err(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "ride store unavailable",
		})
	}
	return c.JSON(http.StatusOK, req)
}

// CheckScheduled forces one waker tick outside the normal schedule.
func (h *Handler) CheckScheduled(c echo.Context) error {
	woken, err := h.uc.WakeScheduled(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "waker tick failed",
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"woken": woken,
	})
}

// TestRideRequest pushes a synthetic request through the full dispatch
// pipeline. Missing fields get filled with plausible defaults so a bare
// POST exercises the path end to end.
func (h *Handler) TestRideRequest(c echo.Context) error {
	var ev models.RideRequestEvent
	if err := c.Bind(&ev); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "malformed request body",
		})
	}
	if ev.BookingID == "" {
		ev.BookingID = uuid.New().String()
	}
	if ev.UserID == "" {
		ev.UserID = "test-rider"
	}
	if ev.UserName == "" {
		ev.UserName = "Test Rider"
	}
	if ev.VehicleType == "" {
		ev.VehicleType = "car"
	}
	if !ev.Pickup.Point().IsValid() || !ev.Dropoff.Point().IsValid() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "pickup and dropoff coordinates are required",
		})
	}

	result, err := h.uc.RequestRide(c.Request().Context(), &ev)
	if errors.Is(err, dispatch.ErrNoDriversAvailable) {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"bookingId":       ev.BookingID,
			"driversNotified": 0,
			"message":         "no drivers available",
		})
	}
	if err != nil {
		logger.Error("test ride request failed",
			logger.String("booking_id", ev.BookingID),
			logger.Err(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "dispatch failed",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"bookingId":       result.BookingID,
		"driversNotified": result.DriversNotified,
		"message":         "drivers notified",
	})
}
