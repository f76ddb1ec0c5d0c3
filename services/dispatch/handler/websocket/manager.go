package websocket

import (
	"github.com/labstack/echo/v4"
	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
	pkgws "github.com/ridewave/dispatch/internal/pkg/websocket"
	"github.com/ridewave/dispatch/services/dispatch"
)

// Handler routes inbound WebSocket events to the dispatch usecase.
type Handler struct {
	uc      dispatch.DispatchUC
	manager *pkgws.Manager
}

// NewHandler creates the WebSocket event handler.
func NewHandler(uc dispatch.DispatchUC, manager *pkgws.Manager) *Handler {
	return &Handler{uc: uc, manager: manager}
}

// HandleDriverWS serves a driver connection.
func (h *Handler) HandleDriverWS(c echo.Context) error {
	return h.manager.HandleConnection(c, models.RoleDriver, h.driverLoop)
}

// HandleRiderWS serves a rider connection.
func (h *Handler) HandleRiderWS(c echo.Context) error {
	return h.manager.HandleConnection(c, models.RoleRider, h.riderLoop)
}

func (h *Handler) driverLoop(s *pkgws.Session) error {
	// A transport drop clears the cached connection id; the session
	// registry entry is removed by the manager only if this session is
	// still the registered one.
	defer h.uc.DriverDisconnect(s.ID)

	for {
		msg, err := h.manager.ReadMessage(s)
		if err != nil {
			return nil
		}

		if err := h.handleDriverMessage(s, msg); err != nil {
			logger.Warn("driver event failed",
				logger.String("driver_id", s.ID),
				logger.String("event", msg.Event),
				logger.Err(err))
		}
	}
}

func (h *Handler) riderLoop(s *pkgws.Session) error {
	for {
		msg, err := h.manager.ReadMessage(s)
		if err != nil {
			return nil
		}

		if err := h.handleRiderMessage(s, msg); err != nil {
			logger.Warn("rider event failed",
				logger.String("rider_id", s.ID),
				logger.String("event", msg.Event),
				logger.Err(err))
		}
	}
}

func (h *Handler) handleDriverMessage(s *pkgws.Session, msg *models.WSMessage) error {
	switch msg.Event {
	case constants.EventDriverConnect:
		return h.handleDriverConnect(s, msg.Data)
	case constants.EventDriverLocation:
		return h.handleDriverLocation(s, msg.Data)
	case constants.EventDriverOffline:
		return h.handleDriverOffline(s)
	case constants.EventRideAccept:
		return h.handleRideAccept(s, msg.Data)
	case constants.EventRideDecline:
		return h.handleRideDecline(s, msg.Data)
	default:
		h.manager.SendError(s, constants.ErrorInvalidFormat, "Unknown event type")
		return nil
	}
}

func (h *Handler) handleRiderMessage(s *pkgws.Session, msg *models.WSMessage) error {
	switch msg.Event {
	case constants.EventRideRequest:
		return h.handleRideRequest(s, msg.Data)
	default:
		h.manager.SendError(s, constants.ErrorInvalidFormat, "Unknown event type")
		return nil
	}
}
