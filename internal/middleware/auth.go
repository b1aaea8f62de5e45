package middleware

import (
	"errors"
	"net/http"
	"strings"

	"spiceshop-service/internal/access"
	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
	"spiceshop-service/pkg/logger"
	"spiceshop-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const identityKey = "identity"

// SessionVerifier resolves a bearer token into the caller identity
type SessionVerifier interface {
	VerifySession(token string) (access.Identity, error)
}

// JWTAuthMiddleware resolves the bearer token into an access.Identity and
// admits the request when access.Authorize accepts the caller for roles.
// No roles admits any authenticated caller.
func JWTAuthMiddleware(sessions SessionVerifier, roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if tokenString == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"message": "Access denied. No token provided.",
					"code":    "unauthenticated",
				})
			}

			id, err := sessions.VerifySession(tokenString)
			if err == nil {
				err = access.Authorize(id, nil, roles...)
			}
			switch {
			case err == nil:
			case errors.Is(err, apperr.ErrForbidden):
				log.Warn("Role not permitted",
					zap.Uint("user_id", id.UserID),
					zap.String("role", string(id.Role)))
				prometheus.RecordAuthError("forbidden_role")
				return c.JSON(http.StatusForbidden, echo.Map{
					"message": "Forbidden: Insufficient role permissions.",
					"code":    "forbidden",
				})
			default:
				log.Warn("Invalid or expired token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"message": "Invalid or expired token.",
					"code":    "unauthenticated",
				})
			}

			c.Set(identityKey, id)
			c.Set(logger.EchoKey, log.With(zap.Uint("user_id", id.UserID)))
			return next(c)
		}
	}
}

// IdentityFrom returns the caller resolved by JWTAuthMiddleware
func IdentityFrom(c echo.Context) (access.Identity, bool) {
	id, ok := c.Get(identityKey).(access.Identity)
	return id, ok
}
