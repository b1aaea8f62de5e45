package handler

import (
	"net/http"

	"spiceshop-service/internal/model"
	"spiceshop-service/internal/service"

	"github.com/labstack/echo/v4"
)

// productRef accepts both spellings of the product id in request bodies
type productRef struct {
	ProductID       uint `json:"product_id"`
	LegacyProductID uint `json:"productId"`
	Quantity        *int `json:"quantity"`
}

func (r productRef) id() uint {
	if r.ProductID != 0 {
		return r.ProductID
	}
	return r.LegacyProductID
}

// GetProfile returns the caller's account
func (h *Handler) GetProfile(c echo.Context) error {
	u, err := h.profiles.Get(c.Request().Context(), caller(c).UserID)
	if err != nil {
		return fail(c, err, "Failed to fetch user profile.")
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateProfile changes the caller's name and addresses
func (h *Handler) UpdateProfile(c echo.Context) error {
	var req service.ProfileInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	u, err := h.profiles.Update(c.Request().Context(), caller(c).UserID, req)
	if err != nil {
		return fail(c, err, "Failed to update profile.")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully.",
		"user":    u,
	})
}

// AddToCart adds a product to the caller's cart
func (h *Handler) AddToCart(c echo.Context) error {
	var req productRef
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	cart, err := h.carts.Add(c.Request().Context(), caller(c).UserID, req.id(), quantity)
	if err != nil {
		return fail(c, err, "Could not update cart.")
	}
	return c.JSON(http.StatusOK, cart)
}

// GetCart returns the caller's cart with current product data
func (h *Handler) GetCart(c echo.Context) error {
	cart, err := h.carts.View(c.Request().Context(), caller(c).UserID)
	if err != nil {
		return fail(c, err, "Failed to fetch cart.")
	}
	return c.JSON(http.StatusOK, cart)
}

// RemoveFromCart drops one product from the caller's cart
func (h *Handler) RemoveFromCart(c echo.Context) error {
	productID, ok := idParam(c, "productId")
	if !ok {
		return badRequest(c, "Invalid product id.")
	}
	cart, err := h.carts.Remove(c.Request().Context(), caller(c).UserID, productID)
	if err != nil {
		return fail(c, err, "Could not update cart.")
	}
	return c.JSON(http.StatusOK, cart)
}

// AddToWishlist saves a product for later
func (h *Handler) AddToWishlist(c echo.Context) error {
	var req productRef
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	items, err := h.carts.SaveForLater(c.Request().Context(), caller(c).UserID, req.id())
	if err != nil {
		return fail(c, err, "Could not update wishlist.")
	}
	return c.JSON(http.StatusOK, items)
}

// GetWishlist returns the caller's saved products
func (h *Handler) GetWishlist(c echo.Context) error {
	items, err := h.carts.Wishlist(c.Request().Context(), caller(c).UserID)
	if err != nil {
		return fail(c, err, "Failed to fetch wishlist.")
	}
	return c.JSON(http.StatusOK, items)
}

// RemoveFromWishlist drops a saved product
func (h *Handler) RemoveFromWishlist(c echo.Context) error {
	productID, ok := idParam(c, "productId")
	if !ok {
		return badRequest(c, "Invalid product id.")
	}
	items, err := h.carts.Unsave(c.Request().Context(), caller(c).UserID, productID)
	if err != nil {
		return fail(c, err, "Could not update wishlist.")
	}
	return c.JSON(http.StatusOK, items)
}

// PlaceOrder checks the caller's cart out into an order
func (h *Handler) PlaceOrder(c echo.Context) error {
	var req struct {
		ShippingAddress       *model.Address `json:"shipping_address"`
		LegacyShippingAddress *model.Address `json:"shippingAddress"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	shipping := req.ShippingAddress
	if shipping == nil {
		shipping = req.LegacyShippingAddress
	}
	if shipping == nil {
		return badRequest(c, "shipping_address is required.")
	}

	order, err := h.orders.PlaceOrder(c.Request().Context(), caller(c).UserID, *shipping)
	if err != nil {
		return fail(c, err, "Checkout failed due to server error.")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order placed successfully.",
		"id":      order.ID,
	})
}

// ListMyOrders returns the caller's order history
func (h *Handler) ListMyOrders(c echo.Context) error {
	orders, err := h.orders.CustomerOrders(c.Request().Context(), caller(c).UserID)
	if err != nil {
		return fail(c, err, "Failed to retrieve order history.")
	}
	return c.JSON(http.StatusOK, orders)
}
