package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/ridewave/dispatch/internal/pkg/logger"
)

// PanicRecovery recovers from handler panics, logs the stack and returns
// a 500 without terminating the process.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic recovered during request processing",
						logger.Any("panic_value", r),
						logger.String("panic_type", fmt.Sprintf("%T", r)),
						logger.String("method", c.Request().Method),
						logger.String("path", c.Request().URL.Path),
						logger.String("client_ip", c.RealIP()),
						logger.String("stack_trace", string(debug.Stack())))

					if !c.Response().Committed {
						_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
							"error":   "Internal Server Error",
							"message": "An unexpected error occurred while processing your request",
						})
					}
				}
			}()
			return next(c)
		}
	}
}
