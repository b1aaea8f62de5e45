package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Readiness reports whether the backing store is reachable
type Readiness interface {
	Up() bool
}

// RequireDatabase answers 503 without running the handler while the
// database is unreachable
func RequireDatabase(r Readiness) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !r.Up() {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"message": "Service unavailable: database is not connected",
					"code":    "unavailable",
				})
			}
			return next(c)
		}
	}
}
