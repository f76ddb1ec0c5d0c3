package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ridewave/dispatch/internal/pkg/logger"
)

// RequestLogger logs one structured line per HTTP request.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("http request",
				logger.String("method", c.Request().Method),
				logger.String("path", c.Request().URL.Path),
				logger.Int("status", c.Response().Status),
				logger.Int64("latency_ms", time.Since(start).Milliseconds()),
				logger.String("client_ip", c.RealIP()))

			return nil
		}
	}
}
