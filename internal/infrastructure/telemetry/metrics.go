package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/event"
	"github.com/groupbuy/backend/internal/infrastructure/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "groupbuy"

// Join outcomes recorded by ObserveJoin
const (
	JoinOutcomeAccepted = "accepted"
	JoinOutcomeRejected = "rejected"
	JoinOutcomeConflict = "conflict"
)

// Metrics holds the Prometheus collectors of the service.
// Each instance owns its registry so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight  prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	outboxSent    *prometheus.CounterVec
	outboxBacklog *prometheus.GaugeVec
	joins         *prometheus.CounterVec
	wsClients     prometheus.Gauge
}

// NewMetrics creates and registers all collectors, including Go runtime and process metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "settlement",
			Name:      "job_runs_total",
			Help:      "Settlement job executions by kind and outcome.",
		}, []string{"kind", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "settlement",
			Name:      "job_duration_seconds",
			Help:      "Duration of settlement job executions.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"kind"}),
		outboxSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "outbox",
			Name:      "deliveries_total",
			Help:      "Outbox delivery attempts by event type and resulting status.",
		}, []string{"event_type", "status"}),
		outboxBacklog: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "outbox",
			Name:      "entries",
			Help:      "Outbox entries by status.",
		}, []string{"status"}),
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "join_attempts_total",
			Help:      "Join attempts by outcome. Conflicts are optimistic lock retries.",
		}, []string{"outcome"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Open websocket connections on this instance.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight, m.httpRequests, m.httpDuration,
		m.jobRuns, m.jobDuration,
		m.outboxSent, m.outboxBacklog,
		m.joins, m.wsClients,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackInFlight increments the in-flight gauge and returns the matching decrement
func (m *Metrics) TrackInFlight() func() {
	m.httpInFlight.Inc()
	return m.httpInFlight.Dec
}

// ObserveHTTP records one finished request. route must be the route template, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveJob implements scheduler.JobObserver
func (m *Metrics) ObserveJob(kind scheduler.JobKind, status scheduler.JobStatus, duration time.Duration) {
	m.jobRuns.WithLabelValues(string(kind), string(status)).Inc()
	m.jobDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
}

// ObserveOutboxDelivery implements event.DeliveryObserver
func (m *Metrics) ObserveOutboxDelivery(eventType string, status shared.OutboxStatus) {
	m.outboxSent.WithLabelValues(eventType, string(status)).Inc()
}

// ObserveOutboxBacklog implements event.DeliveryObserver
func (m *Metrics) ObserveOutboxBacklog(counts map[shared.OutboxStatus]int64) {
	for status, n := range counts {
		m.outboxBacklog.WithLabelValues(string(status)).Set(float64(n))
	}
}

// ObserveJoin records the outcome of one join attempt
func (m *Metrics) ObserveJoin(outcome string) {
	m.joins.WithLabelValues(outcome).Inc()
}

// WebsocketOpened increments the live connection gauge
func (m *Metrics) WebsocketOpened() { m.wsClients.Inc() }

// WebsocketClosed decrements the live connection gauge
func (m *Metrics) WebsocketClosed() { m.wsClients.Dec() }

var (
	_ scheduler.JobObserver  = (*Metrics)(nil)
	_ event.DeliveryObserver = (*Metrics)(nil)
)
