package handler

import (
	"net/http"

	"spiceshop-service/internal/service"
	"spiceshop-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Register handles self-service sign up
func (h *Handler) Register(c echo.Context) error {
	log := logger.FromContext(c)

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse registration request", zap.Error(err))
		return badRequest(c, "Invalid request body.")
	}

	res, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return fail(c, err, "Server error during registration")
	}

	if res.RequiresApproval {
		return c.JSON(http.StatusCreated, echo.Map{
			"message":           "Registration successful. Please wait for admin approval.",
			"requires_approval": true,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"token": res.Token,
		"user":  res.User,
	})
}

// Login handles credential login
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		return badRequest(c, "Invalid request body.")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required.")
	}

	session, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err, "Server error during login")
	}
	return c.JSON(http.StatusOK, session)
}

// Verify returns the account behind the presented token
func (h *Handler) Verify(c echo.Context) error {
	user, err := h.auth.CurrentUser(c.Request().Context(), caller(c))
	if err != nil {
		return fail(c, err, "Server error during token verification")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"user":  user,
	})
}
