// Package handler exposes the storefront services over HTTP with echo.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storefront-service/internal/apperr"
	"storefront-service/internal/service"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler holds the services the HTTP endpoints delegate to
type Handler struct {
	catalog  *service.CatalogService
	overview *service.OverviewService
	orders   *service.OrderService
	identity *service.IdentityService
	db       *gorm.DB
	pretty   bool
}

// Options configures a Handler
type Options struct {
	Catalog  *service.CatalogService
	Overview *service.OverviewService
	Orders   *service.OrderService
	Identity *service.IdentityService
	DB       *gorm.DB
	// Pretty renders indented JSON responses
	Pretty bool
}

func New(opts Options) *Handler {
	return &Handler{
		catalog:  opts.Catalog,
		overview: opts.Overview,
		orders:   opts.Orders,
		identity: opts.Identity,
		db:       opts.DB,
		pretty:   opts.Pretty,
	}
}

// render writes v as JSON in the configured renderer mode
func (h *Handler) render(c echo.Context, status int, v interface{}) error {
	return renderJSON(c, status, v, h.pretty)
}

func renderJSON(c echo.Context, status int, v interface{}, pretty bool) error {
	if pretty {
		return c.JSONPretty(status, v, "  ")
	}
	return c.JSON(status, v)
}

// fail logs err and writes it as an error response
func (h *Handler) fail(c echo.Context, err error, msg string) error {
	log := logger.FromContext(c)
	appErr := apperr.From(err)
	if appErr.Status() >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
	} else {
		log.Warn(msg, zap.String("kind", string(appErr.Kind)), zap.Error(err))
	}
	return h.render(c, appErr.Status(), errorBody(appErr))
}

// bind decodes the request body into v, reporting malformed bodies as validation errors
func (h *Handler) bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return apperr.Validation("invalid request body: %v", httpErr.Message).Wrap(err)
		}
		return apperr.Validation("invalid request body").Wrap(err)
	}
	return nil
}

// idParam parses the :id path parameter
func idParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidField("id", "must be a positive integer")
	}
	return uint(id), nil
}

func errorBody(e *apperr.Error) echo.Map {
	body := echo.Map{
		"error": e.Message,
		"kind":  e.Kind,
	}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	return body
}

// ErrorHandler renders errors returned by middleware and unmatched routes in the API error format
func ErrorHandler(pretty bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *apperr.Error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
		case errors.As(err, &httpErr):
			appErr = fromHTTPError(httpErr)
		default:
			appErr = apperr.From(err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(appErr.Status())
			return
		}
		if err := renderJSON(c, appErr.Status(), errorBody(appErr), pretty); err != nil {
			logger.FromContext(c).Error("Failed to write error response", zap.Error(err))
		}
	}
}

func fromHTTPError(e *echo.HTTPError) *apperr.Error {
	msg := http.StatusText(e.Code)
	if s, ok := e.Message.(string); ok {
		msg = s
	}
	var kind apperr.Kind
	switch e.Code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		kind = apperr.KindNotFound
	case http.StatusUnauthorized:
		kind = apperr.KindUnauthorized
	case http.StatusForbidden:
		kind = apperr.KindForbidden
	case http.StatusConflict:
		kind = apperr.KindConflict
	default:
		if e.Code < http.StatusInternalServerError {
			kind = apperr.KindValidation
		} else {
			kind = apperr.KindInternal
		}
	}
	return &apperr.Error{Kind: kind, Message: msg, Err: e}
}
