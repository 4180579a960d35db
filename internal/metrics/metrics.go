// Package metrics provides Prometheus metrics for the design store.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results used as the "result" label.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// Metrics holds all Prometheus metrics for the store and its transport.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	OpsTotal      *prometheus.CounterVec
	OpDuration    *prometheus.HistogramVec
	RequestsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		OpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "designstore_ops_total",
				Help: "Total store operations by operation and result.",
			},
			[]string{"op", "result"},
		),
		OpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "designstore_op_duration_seconds",
				Help:    "Store operation duration by operation.",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"op"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "designstore_http_requests_total",
				Help: "Total HTTP requests by route and status code.",
			},
			[]string{"route", "status"},
		),
		registry: reg,
	}

	reg.MustRegister(m.OpsTotal)
	reg.MustRegister(m.OpDuration)
	reg.MustRegister(m.RequestsTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry, mainly for tests and adapters.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// RecordOp counts one store operation and observes its latency.
func (m *Metrics) RecordOp(op, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.OpsTotal.WithLabelValues(op, result).Inc()
	m.OpDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RecordRequest counts one HTTP request.
func (m *Metrics) RecordRequest(route, status string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, status).Inc()
}
