// Package server assembles the echo instance and the route table
package server

import (
	"spiceshop-service/internal/handler"
	mid "spiceshop-service/internal/middleware"
	"spiceshop-service/internal/model"
	"spiceshop-service/pkg/logger"
	"spiceshop-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// New builds the HTTP server. API routes answer both at the root and under
// /api.
func New(h *handler.Handler, sessions mid.SessionVerifier, readiness mid.Readiness) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(logger.Middleware())

	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))
	e.GET("/health", h.Health)
	e.GET("/api/health", h.Health)

	for _, prefix := range []string{"", "/api"} {
		registerRoutes(e.Group(prefix, mid.RequireDatabase(readiness)), h, sessions)
	}
	return e
}

func registerRoutes(g *echo.Group, h *handler.Handler, sessions mid.SessionVerifier) {
	authenticated := mid.JWTAuthMiddleware(sessions)
	customer := mid.JWTAuthMiddleware(sessions, model.RoleCustomer)
	merchant := mid.JWTAuthMiddleware(sessions, model.RoleMerchant)
	admin := mid.JWTAuthMiddleware(sessions, model.RoleAdmin)

	// Auth
	g.POST("/auth/register", h.Register)
	g.POST("/auth/login", h.Login)
	g.GET("/auth/verify", h.Verify, authenticated)

	// Public catalog
	g.GET("/products", h.ListProducts)
	g.GET("/products/:id", h.GetProduct)

	// Customer
	g.GET("/users/me/profile", h.GetProfile, authenticated)
	g.PUT("/users/me/profile", h.UpdateProfile, customer)
	g.POST("/users/me/cart", h.AddToCart, customer)
	g.GET("/users/me/cart", h.GetCart, customer)
	g.DELETE("/users/me/cart/:productId", h.RemoveFromCart, customer)
	g.POST("/users/me/wishlist", h.AddToWishlist, customer)
	g.GET("/users/me/wishlist", h.GetWishlist, customer)
	g.DELETE("/users/me/wishlist/:productId", h.RemoveFromWishlist, customer)
	g.POST("/orders", h.PlaceOrder, customer)
	g.GET("/users/me/orders", h.ListMyOrders, customer)

	// Merchant
	m := g.Group("/merchant", merchant)
	m.POST("/products", h.CreateProduct)
	m.GET("/products", h.ListMerchantProducts)
	m.PUT("/products/:id", h.UpdateProduct)
	m.DELETE("/products/:id", h.DeleteProduct)
	m.GET("/orders", h.ListMerchantOrders)
	m.PUT("/orders/:id/status", h.UpdateOrderStatus)
	m.GET("/analytics/sales", h.MerchantSalesAnalytics)
	m.GET("/analytics/products", h.MerchantProductAnalytics)

	// Admin
	a := g.Group("/admin", admin)
	a.GET("/merchants", h.ListMerchants)
	a.PUT("/merchants/:id/approve", h.ApproveMerchant)
	a.DELETE("/merchants/:id", h.RemoveMerchant)
	a.GET("/analytics/sales", h.SalesAnalytics)
	a.GET("/analytics/users", h.UserAnalytics)
}
