package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the storefront exports
type Metrics struct {
	gatherer prometheus.Gatherer

	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter *prometheus.CounterVec
	AuthErrorsCounter   *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Catalog metrics
	CatalogOperationsCounter *prometheus.CounterVec
	OverviewProductsGauge    prometheus.Gauge

	// Order metrics
	OrdersCreatedCounter prometheus.Counter
	OrderLinesCounter    prometheus.Counter
	OrderFailuresCounter *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg using the given metric name prefix
func NewMetrics(prefix string, reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: gatherer,

		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		AuthAttemptsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
			[]string{"operation"}, // login, refresh, logout, register, change_password
		),

		AuthErrorsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of authentication errors",
			},
			[]string{"type"},
		),

		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),

		CatalogOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_catalog_operations_total",
				Help: "Total number of catalog write operations",
			},
			[]string{"entity", "operation"},
		),

		OverviewProductsGauge: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_overview_products",
				Help: "Number of visible products in the last overview built",
			},
		),

		OrdersCreatedCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_orders_created_total",
				Help: "Total number of orders created",
			},
		),

		OrderLinesCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_order_lines_total",
				Help: "Total number of order lines created",
			},
		),

		OrderFailuresCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_order_failures_total",
				Help: "Total number of rejected or failed order creations",
			},
			[]string{"kind"},
		),
	}
}

// NewTestMetrics returns metrics registered on a private registry
func NewTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return NewMetrics("test", reg, reg)
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		m.DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordCatalogOperation increments the counter for catalog write operations
func (m *Metrics) RecordCatalogOperation(entity, operation string) {
	m.CatalogOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordAuthAttempt increments the authentication attempts counter
func (m *Metrics) RecordAuthAttempt(operation string) {
	m.AuthAttemptsCounter.WithLabelValues(operation).Inc()
}

// RecordAuthError increments the authentication error counter
func (m *Metrics) RecordAuthError(errorType string) {
	m.AuthErrorsCounter.WithLabelValues(errorType).Inc()
}

// RecordOrderCreated counts a committed order and its lines
func (m *Metrics) RecordOrderCreated(lines int) {
	m.OrdersCreatedCounter.Inc()
	m.OrderLinesCounter.Add(float64(lines))
}

// RecordOrderFailure counts an order creation that did not commit
func (m *Metrics) RecordOrderFailure(kind string) {
	m.OrderFailuresCounter.WithLabelValues(kind).Inc()
}

// Handler returns an HTTP handler for exposing Prometheus metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
