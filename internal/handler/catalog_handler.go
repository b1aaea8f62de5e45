package handler

import (
	"net/http"

	"spiceshop-service/internal/repository"

	"github.com/labstack/echo/v4"
)

// ListProducts serves the public catalog with search, category and sort
func (h *Handler) ListProducts(c echo.Context) error {
	q := repository.ProductQuery{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
	}
	products, err := h.catalog.Search(c.Request().Context(), q)
	if err != nil {
		return fail(c, err, "Failed to fetch products.")
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct serves one catalog item
func (h *Handler) GetProduct(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid product id.")
	}
	p, err := h.catalog.Product(c.Request().Context(), id)
	if err != nil {
		return fail(c, err, "Failed to fetch product.")
	}
	return c.JSON(http.StatusOK, p)
}
