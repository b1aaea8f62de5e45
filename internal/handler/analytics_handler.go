package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SalesAnalytics reports daily totals over all orders
func (h *Handler) SalesAnalytics(c echo.Context) error {
	from, to, err := h.analytics.Range(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return fail(c, err, "Invalid date range.")
	}
	sales, err := h.analytics.Sales(c.Request().Context(), from, to)
	if err != nil {
		return fail(c, err, "Failed to fetch sales analytics.")
	}
	return c.JSON(http.StatusOK, sales)
}

// UserAnalytics reports account counts per role
func (h *Handler) UserAnalytics(c echo.Context) error {
	stats, err := h.analytics.Users(c.Request().Context())
	if err != nil {
		return fail(c, err, "Failed to fetch user statistics.")
	}
	return c.JSON(http.StatusOK, stats)
}

// MerchantSalesAnalytics reports daily totals of the caller's lines
func (h *Handler) MerchantSalesAnalytics(c echo.Context) error {
	from, to, err := h.analytics.Range(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return fail(c, err, "Invalid date range.")
	}
	sales, err := h.analytics.MerchantSales(c.Request().Context(), caller(c).UserID, from, to)
	if err != nil {
		return fail(c, err, "Failed to fetch sales analytics.")
	}
	return c.JSON(http.StatusOK, sales)
}

// MerchantProductAnalytics lists the caller's products by review count
func (h *Handler) MerchantProductAnalytics(c echo.Context) error {
	products, err := h.analytics.MerchantProducts(c.Request().Context(), caller(c).UserID)
	if err != nil {
		return fail(c, err, "Failed to fetch product analytics.")
	}
	return c.JSON(http.StatusOK, products)
}
