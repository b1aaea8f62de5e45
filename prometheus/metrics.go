package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// HTTP request counter by path and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spiceshop_http_requests_total",
			Help: "Total number of HTTP requests by path and status",
		},
		[]string{"method", "path", "status"},
	)

	// Login and registration attempts by outcome
	AuthCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spiceshop_auth_total",
			Help: "Total number of authentication operations",
		},
		[]string{"operation", "outcome"}, // operation: login, register, verify
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spiceshop_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type: missing_token, invalid_token, forbidden_role, ...
	)

	// Checkout outcomes
	CheckoutCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spiceshop_checkout_total",
			Help: "Total number of checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Order status transitions
	OrderStatusCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spiceshop_order_status_updates_total",
			Help: "Total number of order status updates by new status",
		},
		[]string{"status"},
	)

	// Cart operations
	CartOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spiceshop_cart_operations_total",
			Help: "Total number of cart and wishlist operations",
		},
		[]string{"operation"},
	)

	// Published order events
	EventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spiceshop_order_events_total",
			Help: "Total number of order events by type and outcome",
		},
		[]string{"type", "outcome"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spiceshop_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spiceshop_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	DBUpGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spiceshop_db_up",
			Help: "Whether the last database health probe succeeded",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(CheckoutCounter)
	prometheus.MustRegister(OrderStatusCounter)
	prometheus.MustRegister(CartOperationCounter)
	prometheus.MustRegister(EventCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(DBUpGauge)
}

// MetricsMiddleware records request counts and durations
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			method := c.Request().Method
			path := c.Path()
			status := strconv.Itoa(c.Response().Status)

			HTTPRequestCounter.WithLabelValues(method, path, status).Inc()
			RequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// RecordAuth increments the auth operation counter
func RecordAuth(operation, outcome string) {
	AuthCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordAuthError increments the auth error counter
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordCheckout increments the checkout counter
func RecordCheckout(outcome string) {
	CheckoutCounter.WithLabelValues(outcome).Inc()
}

// RecordOrderStatus increments the status update counter
func RecordOrderStatus(status string) {
	OrderStatusCounter.WithLabelValues(status).Inc()
}

// RecordCartOperation increments the cart counter
func RecordCartOperation(operation string) {
	CartOperationCounter.WithLabelValues(operation).Inc()
}

// RecordEvent increments the event counter
func RecordEvent(eventType, outcome string) {
	EventCounter.WithLabelValues(eventType, outcome).Inc()
}

// SetDBUp records the outcome of a database probe
func SetDBUp(up bool) {
	if up {
		DBUpGauge.Set(1)
		return
	}
	DBUpGauge.Set(0)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// GetPrometheusHandler returns an HTTP handler for exposing Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
