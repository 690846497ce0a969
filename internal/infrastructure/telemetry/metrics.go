package telemetry

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/domain/trade"
)

const namespace = "seafresh"

// Metrics holds the Prometheus collectors exposed on /metrics.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	dbQueryDuration     *prometheus.HistogramVec
	eventDispatches     *prometheus.CounterVec
	eventDuration       *prometheus.HistogramVec
	jobRuns             *prometheus.CounterVec
	jobDuration         *prometheus.HistogramVec
	ordersPlaced        *prometheus.CounterVec
	orderValue          *prometheus.HistogramVec
	orderOutcomes       *prometheus.CounterVec
	revenue             prometheus.Counter
	refunds             prometheus.Counter

	// WebsocketConnections is the number of open realtime connections
	WebsocketConnections prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry, together with the
// Go runtime and process collectors
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	m.dbQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Database statement latency by operation, table and outcome.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"operation", "table", "result"})

	m.eventDispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "dispatches_total",
		Help:      "Domain event handler invocations by event type and result.",
	}, []string{"event", "result"})

	m.eventDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "handler_duration_seconds",
		Help:      "Domain event handler latency by event type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event"})

	m.jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "job_runs_total",
		Help:      "Background job runs by job and result.",
	}, []string{"job", "result"})

	m.jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "job_duration_seconds",
		Help:      "Background job run time.",
		Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
	}, []string{"job"})

	m.ordersPlaced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders placed by payment method.",
	}, []string{"payment_method"})

	m.orderValue = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "value_rupees",
		Help:      "Order totals in rupees by payment method.",
		Buckets:   []float64{250, 500, 1000, 2000, 3000, 5000, 10000, 20000},
	}, []string{"payment_method"})

	m.orderOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "outcomes_total",
		Help:      "Order lifecycle outcomes: paid, payment_failed, cancelled, refunded.",
	}, []string{"outcome"})

	m.revenue = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "captured_rupees_total",
		Help:      "Online payments captured, in rupees.",
	})

	m.refunds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "refunded_rupees_total",
		Help:      "Refunds processed, in rupees.",
	})

	m.WebsocketConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "connections",
		Help:      "Open websocket connections.",
	})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpRequestDuration, m.dbQueryDuration,
		m.eventDispatches, m.eventDuration, m.jobRuns, m.jobDuration,
		m.ordersPlaced, m.orderValue, m.orderOutcomes, m.revenue, m.refunds,
		m.WebsocketConnections,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterDBStats exports the connection pool statistics of db
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// ObserveHTTPRequest records a served request. route is the matched route
// template, never the raw path.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, took time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// ObserveQuery records a database statement
func (m *Metrics) ObserveQuery(operation, table string, took time.Duration, err error) {
	if table == "" {
		table = "unknown"
	}
	m.dbQueryDuration.WithLabelValues(operation, table, result(err)).Observe(took.Seconds())
}

// ObserveDispatch implements event.DispatchObserver
func (m *Metrics) ObserveDispatch(eventType string, took time.Duration, err error) {
	m.eventDispatches.WithLabelValues(eventType, result(err)).Inc()
	m.eventDuration.WithLabelValues(eventType).Observe(took.Seconds())
}

// ObserveJob records a background job run; it matches scheduler.RunObserver
func (m *Metrics) ObserveJob(job string, took time.Duration, err error) {
	m.jobRuns.WithLabelValues(job, result(err)).Inc()
	m.jobDuration.WithLabelValues(job).Observe(took.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OrderMetricsHandler turns order events into business metrics
type OrderMetricsHandler struct {
	metrics *Metrics
}

var _ shared.EventHandler = (*OrderMetricsHandler)(nil)

// NewOrderMetricsHandler creates the handler
func NewOrderMetricsHandler(m *Metrics) *OrderMetricsHandler {
	return &OrderMetricsHandler{metrics: m}
}

// EventTypes returns the order events that carry business metrics
func (h *OrderMetricsHandler) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeOrderPaid,
		trade.EventTypeOrderPaymentFailed,
		trade.EventTypeOrderCancelled,
		trade.EventTypeOrderRefunded,
	}
}

// Handle records the event
func (h *OrderMetricsHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		method := string(e.PaymentMethod)
		total, _ := e.Total.Float64()
		h.metrics.ordersPlaced.WithLabelValues(method).Inc()
		h.metrics.orderValue.WithLabelValues(method).Observe(total)
	case *trade.OrderPaidEvent:
		amount, _ := e.Amount.Float64()
		h.metrics.orderOutcomes.WithLabelValues("paid").Inc()
		h.metrics.revenue.Add(amount)
	case *trade.OrderPaymentFailedEvent:
		h.metrics.orderOutcomes.WithLabelValues("payment_failed").Inc()
	case *trade.OrderCancelledEvent:
		h.metrics.orderOutcomes.WithLabelValues("cancelled").Inc()
	case *trade.OrderRefundedEvent:
		amount, _ := e.Amount.Float64()
		h.metrics.orderOutcomes.WithLabelValues("refunded").Inc()
		if amount > 0 {
			h.metrics.refunds.Add(amount)
		}
	}
	return nil
}
