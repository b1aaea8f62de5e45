package handler

import (
	"fmt"
	"net/http"

	"spiceshop-service/internal/model"

	"github.com/labstack/echo/v4"
)

// ListMerchants lists merchant accounts, ?status=pending for those awaiting approval
func (h *Handler) ListMerchants(c echo.Context) error {
	merchants, err := h.admin.Merchants(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return fail(c, err, "Failed to retrieve merchant list.")
	}
	return c.JSON(http.StatusOK, merchants)
}

// ApproveMerchant lets a merchant log in
func (h *Handler) ApproveMerchant(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid merchant id.")
	}
	u, err := h.admin.Approve(c.Request().Context(), id)
	if err != nil {
		return fail(c, err, "Failed to approve merchant.")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("%s approved successfully.", displayName(u)),
		"user":    u,
	})
}

// RemoveMerchant deletes a merchant and its catalog
func (h *Handler) RemoveMerchant(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid merchant id.")
	}
	u, err := h.admin.Remove(c.Request().Context(), id)
	if err != nil {
		return fail(c, err, "Failed to remove merchant.")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Merchant %s removed.", displayName(u)),
	})
}

func displayName(u *model.User) string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.Email
}
