package handler

import (
	"net/http"

	"storefront-service/internal/apperr"
	"storefront-service/internal/middleware"
	"storefront-service/internal/service"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateOrder places an order for the authenticated user
func (h *Handler) CreateOrder(c echo.Context) error {
	log := logger.FromContext(c)
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return h.fail(c, apperr.Unauthorized("authentication required"), "Missing identity")
	}

	var req service.OrderInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	log.Info("Order creation request", zap.Int("lines", len(req.Items)))

	order, err := h.orders.CreateOrder(c.Request().Context(), who, req)
	if err != nil {
		return h.fail(c, err, "Failed to create order")
	}
	return h.render(c, http.StatusCreated, order)
}

func (h *Handler) ListOrders(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return h.fail(c, apperr.Unauthorized("authentication required"), "Missing identity")
	}
	orders, err := h.orders.ListOrders(c.Request().Context(), who)
	if err != nil {
		return h.fail(c, err, "Failed to list orders")
	}
	return h.render(c, http.StatusOK, orders)
}

func (h *Handler) GetOrder(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return h.fail(c, apperr.Unauthorized("authentication required"), "Missing identity")
	}
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid order id")
	}
	order, err := h.orders.GetOrder(c.Request().Context(), who, id)
	if err != nil {
		return h.fail(c, err, "Failed to get order")
	}
	return h.render(c, http.StatusOK, order)
}
