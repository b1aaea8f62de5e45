package handler

import (
	"fmt"
	"net/http"

	"spiceshop-service/internal/service"

	"github.com/labstack/echo/v4"
)

// CreateProduct adds a product owned by the calling merchant
func (h *Handler) CreateProduct(c echo.Context) error {
	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	p, err := h.catalog.CreateProduct(c.Request().Context(), caller(c).UserID, req)
	if err != nil {
		return fail(c, err, "Failed to add product.")
	}
	return c.JSON(http.StatusCreated, p)
}

// ListMerchantProducts returns the calling merchant's products
func (h *Handler) ListMerchantProducts(c echo.Context) error {
	products, err := h.catalog.MerchantProducts(c.Request().Context(), caller(c).UserID)
	if err != nil {
		return fail(c, err, "Failed to fetch merchant products.")
	}
	return c.JSON(http.StatusOK, products)
}

// UpdateProduct changes one of the calling merchant's products
func (h *Handler) UpdateProduct(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid product id.")
	}
	var req service.ProductPatch
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	p, err := h.catalog.UpdateProduct(c.Request().Context(), caller(c).UserID, id, req)
	if err != nil {
		return fail(c, err, "Failed to update product.")
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteProduct removes one of the calling merchant's products
func (h *Handler) DeleteProduct(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid product id.")
	}
	if err := h.catalog.DeleteProduct(c.Request().Context(), caller(c).UserID, id); err != nil {
		return fail(c, err, "Failed to delete product.")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted."})
}

// ListMerchantOrders returns orders containing the merchant's products
func (h *Handler) ListMerchantOrders(c echo.Context) error {
	orders, err := h.orders.MerchantOrders(c.Request().Context(), caller(c).UserID)
	if err != nil {
		return fail(c, err, "Failed to fetch merchant orders.")
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus sets the fulfillment status of an order
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid order id.")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	order, err := h.orders.UpdateStatus(c.Request().Context(), caller(c), id, req.Status)
	if err != nil {
		return fail(c, err, "Failed to update order status.")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Order status updated to %s.", order.FulfillmentStatus),
		"order":   order,
	})
}
