package http

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/ridewave/dispatch/internal/pkg/health"
	"github.com/ridewave/dispatch/internal/pkg/middleware"
	"github.com/ridewave/dispatch/internal/pkg/models"
	ws "github.com/ridewave/dispatch/services/dispatch/handler/websocket"
)

// RegisterRoutes wires the socket endpoints and the control plane onto
// the Echo instance.
func RegisterRoutes(e *echo.Echo, cfg *models.Config, h *Handler, wsHandler *ws.Handler) {
	e.Use(middleware.RequestLogger())
	e.Use(middleware.PanicRecovery())
	if len(cfg.Server.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: cfg.Server.CORSOrigins,
		}))
	}

	e.GET("/ping", health.NewPingHandler(cfg.App.Name))

	// Realtime endpoints
	e.GET("/ws/driver", wsHandler.HandleDriverWS)
	e.GET("/ws/rider", wsHandler.HandleRiderWS)

	// Control plane
	e.GET("/health", h.Health)
	e.GET("/drivers/online", h.OnlineDrivers)
	e.GET("/scheduled/pending", h.PendingScheduled)
	e.GET("/rides/:id", h.RideStatus)
	e.POST("/scheduled/check", h.CheckScheduled)
	e.POST("/test/ride-request", h.TestRideRequest)
}
