package middleware

import (
	"context"
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/service"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const identityKey = "identity"

// TokenVerifier resolves an access token to the caller's identity
type TokenVerifier interface {
	VerifyAccess(ctx context.Context, accessToken string) (service.Identity, error)
}

// AuthMiddleware requires a valid Bearer access token and stores the caller's identity
func AuthMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				return apperr.Unauthorized("missing authorization token")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				return apperr.Unauthorized("invalid authorization format, expected Bearer token")
			}

			who, err := verifier.VerifyAccess(c.Request().Context(), parts[1])
			if err != nil {
				log.Warn("Invalid access token", zap.Error(err))
				return err
			}

			userLog := log.With(zap.Uint("user_id", who.UserID))
			c.Set(identityKey, who)
			c.Set("logger", userLog)
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), userLog)))
			return next(c)
		}
	}
}

// StaffOnly rejects authenticated callers without the staff flag; it must run after AuthMiddleware
func StaffOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		who, ok := IdentityFrom(c)
		if !ok {
			return apperr.Unauthorized("authentication required")
		}
		if !who.IsStaff {
			logger.FromContext(c).Warn("Staff route denied", zap.Uint("user_id", who.UserID))
			return apperr.Forbidden("staff access required")
		}
		return next(c)
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware
func IdentityFrom(c echo.Context) (service.Identity, bool) {
	who, ok := c.Get(identityKey).(service.Identity)
	return who, ok
}
