// Package handler holds the echo handlers of the HTTP API
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"spiceshop-service/internal/access"
	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/middleware"
	"spiceshop-service/internal/service"
	"spiceshop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler serves the API routes
type Handler struct {
	auth      *service.AuthService
	carts     *service.CartService
	orders    *service.OrderService
	catalog   *service.CatalogService
	profiles  *service.ProfileService
	admin     *service.AdminService
	analytics *service.AnalyticsService
	readiness middleware.Readiness
}

// Services is everything the handlers delegate to
type Services struct {
	Auth      *service.AuthService
	Carts     *service.CartService
	Orders    *service.OrderService
	Catalog   *service.CatalogService
	Profiles  *service.ProfileService
	Admin     *service.AdminService
	Analytics *service.AnalyticsService
	Readiness middleware.Readiness
}

// New creates the handler set
func New(s Services) *Handler {
	return &Handler{
		auth:      s.Auth,
		carts:     s.Carts,
		orders:    s.Orders,
		catalog:   s.Catalog,
		profiles:  s.Profiles,
		admin:     s.Admin,
		analytics: s.Analytics,
		readiness: s.Readiness,
	}
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Message          string `json:"message"`
	Code             string `json:"code,omitempty"`
	RequiresApproval bool   `json:"requires_approval,omitempty"`
}

var errorStatus = []struct {
	kind   error
	status int
	code   string
}{
	{apperr.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperr.ErrUserExists, http.StatusBadRequest, "user_exists"},
	{apperr.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials"},
	{apperr.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{apperr.ErrProductUnavailable, http.StatusBadRequest, "product_unavailable"},
	{apperr.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{apperr.ErrPendingApproval, http.StatusForbidden, "pending_approval"},
	{apperr.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperr.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperr.ErrCheckoutConflict, http.StatusConflict, "checkout_conflict"},
	{apperr.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
}

// fail writes err as a JSON error. Errors outside the taxonomy are logged
// and reported as a generic 500.
func fail(c echo.Context, err error, fallback string) error {
	log := logger.FromContext(c)
	for _, e := range errorStatus {
		if !errors.Is(err, e.kind) {
			continue
		}
		resp := errorResponse{Message: apperr.Message(err, fallback), Code: e.code}
		switch e.status {
		case http.StatusServiceUnavailable:
			log.Error("Storage unavailable", zap.Error(err))
			resp.Message = "Service temporarily unavailable."
		case http.StatusUnauthorized:
			resp.Message = apperr.Message(err, "Invalid or expired token.")
		}
		if errors.Is(err, apperr.ErrPendingApproval) {
			resp.RequiresApproval = true
		}
		return c.JSON(e.status, resp)
	}

	log.Error(fallback, zap.Error(err))
	return c.JSON(http.StatusInternalServerError, errorResponse{Message: fallback})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Message: message, Code: "validation_error"})
}

// caller returns the identity set by the auth middleware
func caller(c echo.Context) access.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

func idParam(c echo.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
