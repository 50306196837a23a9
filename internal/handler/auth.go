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

// DeleteAccountRequest confirms account deletion with the current password
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// Register handles user registration
func (h *Handler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Processing registration request")

	var req service.RegisterInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}

	user, err := h.identity.Register(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "Registration failed")
	}
	log.Info("User registered successfully", zap.Uint("user_id", user.ID))
	return h.render(c, http.StatusCreated, user)
}

// Login handles user authentication and returns an access/refresh token pair
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromContext(c)

	var req service.LoginInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	log.Info("Login attempt", zap.String("username", req.Username))

	session, err := h.identity.Login(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "Login failed")
	}
	return h.render(c, http.StatusOK, session)
}

// RefreshToken exchanges a refresh token for a new token pair
func (h *Handler) RefreshToken(c echo.Context) error {
	var req RefreshRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}

	pair, err := h.identity.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return h.fail(c, err, "Token refresh failed")
	}
	return h.render(c, http.StatusOK, pair)
}

// Logout revokes the caller's refresh token
func (h *Handler) Logout(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return h.fail(c, apperr.Unauthorized("authentication required"), "Missing identity")
	}
	var req RefreshRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}

	if err := h.identity.Logout(c.Request().Context(), who, req.Refresh); err != nil {
		return h.fail(c, err, "Logout failed")
	}
	return c.NoContent(http.StatusResetContent)
}

func (h *Handler) Profile(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return h.fail(c, apperr.Unauthorized("authentication required"), "Missing identity")
	}
	user, err := h.identity.Profile(c.Request().Context(), who)
	if err != nil {
		return h.fail(c, err, "Failed to load profile")
	}
	return h.render(c, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return h.fail(c, apperr.Unauthorized("authentication required"), "Missing identity")
	}
	var req service.ProfileInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	user, err := h.identity.UpdateProfile(c.Request().Context(), who, req)
	if err != nil {
		return h.fail(c, err, "Failed to update profile")
	}
	return h.render(c, http.StatusOK, user)
}

func (h *Handler) ChangePassword(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return h.fail(c, apperr.Unauthorized("authentication required"), "Missing identity")
	}
	var req service.ChangePasswordInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	if err := h.identity.ChangePassword(c.Request().Context(), who, req); err != nil {
		return h.fail(c, err, "Failed to change password")
	}
	return h.render(c, http.StatusOK, echo.Map{"detail": "password changed"})
}

// DeleteAccount removes the caller's account
func (h *Handler) DeleteAccount(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return h.fail(c, apperr.Unauthorized("authentication required"), "Missing identity")
	}
	var req DeleteAccountRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	if err := h.identity.DeleteAccount(c.Request().Context(), who, req.Password); err != nil {
		return h.fail(c, err, "Failed to delete account")
	}
	return c.NoContent(http.StatusNoContent)
}
