package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several services (or tests) can build
// their own set in one process.
type Metrics struct {
	registry  *prometheus.Registry
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
	Sync      *prometheus.CounterVec
	Outbox    *prometheus.CounterVec
	Consumed  *prometheus.CounterVec
}

func New(service string) *Metrics {
	sub := strings.NewReplacer("-", "_", ".", "_").Replace(service)
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attic",
			Subsystem: sub,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attic",
			Subsystem: sub,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		Sync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attic",
			Subsystem: sub,
			Name:      "availability_sync_total",
			Help:      "Best-effort product availability calls by intent and result.",
		}, []string{"intent", "result"}),
		Outbox: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attic",
			Subsystem: sub,
			Name:      "outbox_relay_total",
			Help:      "Outbox records handled by the relay, by result.",
		}, []string{"result"}),
		Consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attic",
			Subsystem: sub,
			Name:      "availability_events_total",
			Help:      "Availability events consumed, by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.Requests, m.LatencyMS, m.Sync, m.Outbox, m.Consumed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The Observe helpers are safe on a nil *Metrics.

func (m *Metrics) ObserveSync(intent string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Sync.WithLabelValues(intent, result).Inc()
}

func (m *Metrics) ObserveOutbox(result string) {
	if m == nil {
		return
	}
	m.Outbox.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveConsumed(result string) {
	if m == nil {
		return
	}
	m.Consumed.WithLabelValues(result).Inc()
}
