package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"spiceshop-service/internal/events"
	"spiceshop-service/internal/handler"
	"spiceshop-service/internal/repository"
	"spiceshop-service/internal/service"
	"spiceshop-service/internal/testutil"
	"spiceshop-service/pkg/jwtutil"
	"spiceshop-service/pkg/lock"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReadiness struct{ down atomic.Bool }

func (f *fakeReadiness) Up() bool { return !f.down.Load() }

type testServer struct {
	e     *echo.Echo
	auth  *service.AuthService
	ready *fakeReadiness
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-secret", ExpirationHours: 24})
	ready := &fakeReadiness{}

	auth := service.NewAuthService(store, jwtUtil)
	h := handler.New(handler.Services{
		Auth:      auth,
		Carts:     service.NewCartService(store),
		Orders:    service.NewOrderService(store, lock.NewLocalLocker(), events.NoopPublisher{}, 5*time.Second),
		Catalog:   service.NewCatalogService(store),
		Profiles:  service.NewProfileService(store),
		Admin:     service.NewAdminService(store),
		Analytics: service.NewAnalyticsService(store),
		Readiness: ready,
	})
	return &testServer{e: New(h, auth, ready), auth: auth, ready: ready}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "", echo.Map{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	return resp.Token
}

type errorBody struct {
	Message          string `json:"message"`
	Code             string `json:"code"`
	RequiresApproval bool   `json:"requires_approval"`
}

func TestMerchantOnboardingAndCheckout(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.auth.EnsureAdmin(context.Background(), "admin@example.com", "admin-pw"))

	// merchant registers and waits for approval
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", echo.Map{
		"username": "spicy", "email": "m@example.com", "password": "m-pw", "role": "merchant", "name": "Spicy Co",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg struct {
		Token            string `json:"token"`
		RequiresApproval bool   `json:"requires_approval"`
	}
	decode(t, rec, &reg)
	assert.Empty(t, reg.Token)
	assert.True(t, reg.RequiresApproval)

	rec = s.do(t, http.MethodPost, "/auth/login", "", echo.Map{"email": "m@example.com", "password": "m-pw"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	var pending errorBody
	decode(t, rec, &pending)
	assert.Equal(t, "pending_approval", pending.Code)
	assert.True(t, pending.RequiresApproval)

	adminToken := s.login(t, "admin@example.com", "admin-pw")
	rec = s.do(t, http.MethodGet, "/admin/merchants?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var merchants []struct {
		ID uint `json:"id"`
	}
	decode(t, rec, &merchants)
	require.Len(t, merchants, 1)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/admin/merchants/%d/approve", merchants[0].ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	merchantToken := s.login(t, "m@example.com", "m-pw")

	// merchant lists two products
	productIDs := make([]uint, 0, 2)
	for _, p := range []echo.Map{
		{"name": "Saffron", "description": "Threads", "price": 10, "stock_quantity": 50, "category": "threads"},
		{"name": "Cumin", "description": "Seeds", "price": "5.00", "stock_quantity": 80, "category": "whole"},
	} {
		rec = s.do(t, http.MethodPost, "/merchant/products", merchantToken, p)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created struct {
			ID           uint   `json:"id"`
			QuantityUnit string `json:"quantity_unit"`
		}
		decode(t, rec, &created)
		assert.Equal(t, "grams", created.QuantityUnit)
		productIDs = append(productIDs, created.ID)
	}

	// customer registers with an immediate session
	rec = s.do(t, http.MethodPost, "/auth/register", "", echo.Map{
		"email": "c@example.com", "password": "c-pw", "role": "customer", "name": "Cathy",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var customer struct {
		Token string `json:"token"`
	}
	decode(t, rec, &customer)
	require.NotEmpty(t, customer.Token)

	rec = s.do(t, http.MethodPost, "/users/me/cart", customer.Token, echo.Map{"productId": productIDs[0], "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/users/me/cart", customer.Token, echo.Map{"product_id": productIDs[1], "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/orders", customer.Token, echo.Map{
		"shippingAddress": echo.Map{"street": "1 Spice Market", "city": "Kochi", "zip": "682001", "country": "IN"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var placed struct {
		ID      uint   `json:"id"`
		Message string `json:"message"`
	}
	decode(t, rec, &placed)
	assert.NotZero(t, placed.ID)

	rec = s.do(t, http.MethodGet, "/users/me/orders", customer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []struct {
		ID                uint            `json:"id"`
		TotalAmount       decimal.Decimal `json:"total_amount"`
		FulfillmentStatus string          `json:"fulfillment_status"`
	}
	decode(t, rec, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, placed.ID, orders[0].ID)
	assert.True(t, decimal.NewFromInt(25).Equal(orders[0].TotalAmount), orders[0].TotalAmount.String())
	assert.Equal(t, "Pending", orders[0].FulfillmentStatus)

	rec = s.do(t, http.MethodGet, "/users/me/cart", customer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart []json.RawMessage
	decode(t, rec, &cart)
	assert.Empty(t, cart)

	// a second checkout finds the cart empty
	rec = s.do(t, http.MethodPost, "/orders", customer.Token, echo.Map{"shipping_address": echo.Map{"city": "Kochi"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var empty errorBody
	decode(t, rec, &empty)
	assert.Equal(t, "empty_cart", empty.Code)

	// merchant ships the order
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/merchant/orders/%d/status", placed.ID), merchantToken, echo.Map{"status": "Shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Order status updated to Shipped.")
}

func TestAuthenticationFailures(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/users/me/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "Access denied. No token provided.", body.Message)
	assert.Equal(t, "unauthenticated", body.Code)

	rec = s.do(t, http.MethodGet, "/users/me/cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "Invalid or expired token.", body.Message)

	rec = s.do(t, http.MethodPost, "/auth/register", "", echo.Map{"email": "c@example.com", "password": "pw", "role": "customer"})
	require.Equal(t, http.StatusCreated, rec.Code)
	customerToken := s.login(t, "c@example.com", "pw")

	rec = s.do(t, http.MethodGet, "/merchant/products", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "forbidden", body.Code)
	rec = s.do(t, http.MethodGet, "/admin/merchants", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/auth/verify", customerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valid":true`)

	rec = s.do(t, http.MethodPost, "/auth/login", "", echo.Map{"email": "c@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "Invalid credentials", body.Message)

	rec = s.do(t, http.MethodPost, "/auth/register", "", echo.Map{"email": "x@example.com", "password": "pw", "role": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/register", "", echo.Map{
		"email": "long@example.com", "password": strings.Repeat("x", 80), "role": "customer",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "validation_error", body.Code)

	rec = s.do(t, http.MethodPost, "/auth/register", "", echo.Map{"email": "c@example.com", "password": "pw", "role": "customer"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "User already exists", body.Message)
}

func TestCartValidationAndNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/auth/register", "", echo.Map{"email": "c@example.com", "password": "pw", "role": "customer"})
	require.Equal(t, http.StatusCreated, rec.Code)
	token := s.login(t, "c@example.com", "pw")

	rec = s.do(t, http.MethodPost, "/users/me/cart", token, echo.Map{"productId": 1, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/users/me/cart", token, echo.Map{"productId": 999, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/users/me/cart/999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/products/12345", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatabaseGate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	s.ready.down.Store(true)

	rec = s.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var unavailable errorBody
	decode(t, rec, &unavailable)
	assert.Equal(t, "unavailable", unavailable.Code)

	rec = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status      string `json:"status"`
		DBConnected bool   `json:"db_connected"`
	}
	decode(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.False(t, health.DBConnected)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
