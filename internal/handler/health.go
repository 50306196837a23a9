package handler

import (
	"net/http"

	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HealthCheck handles the health check endpoint; ?check=db also pings the database
func (h *Handler) HealthCheck(c echo.Context) error {
	if c.QueryParam("check") == "db" {
		if err := database.Ping(h.db); err != nil {
			logger.FromContext(c).Error("Database health check failed", zap.Error(err))
			return h.render(c, http.StatusServiceUnavailable, echo.Map{
				"status":   "unhealthy",
				"service":  "storefront-service",
				"database": "unreachable",
			})
		}
		return h.render(c, http.StatusOK, echo.Map{
			"status":   "healthy",
			"service":  "storefront-service",
			"database": "ok",
		})
	}

	return h.render(c, http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "storefront-service",
	})
}
