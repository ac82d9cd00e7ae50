package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects authentication and error-rendering counters. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	authDecisions *prometheus.CounterVec
	tokenFailures *prometheus.CounterVec
	errorReplies  *prometheus.CounterVec
	corsRejected  prometheus.Counter
}

// NewMetrics registers the gateway collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		authDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_decisions_total",
			Help: "Authentication decisions by outcome (public, authenticated, rejected).",
		}, []string{"outcome"}),
		tokenFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_failures_total",
			Help: "Bearer tokens rejected, by failure kind.",
		}, []string{"kind"}),
		errorReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_error_responses_total",
			Help: "Error payloads rendered, by HTTP status.",
		}, []string{"status"}),
		corsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cors_rejected_total",
			Help: "Requests rejected because their Origin is not allowed.",
		}),
	}
	reg.MustRegister(m.authDecisions, m.tokenFailures, m.errorReplies, m.corsRejected)
	return m
}

func (m *Metrics) RecordAuthDecision(outcome string) {
	if m == nil {
		return
	}
	m.authDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordTokenFailure(kind string) {
	if m == nil {
		return
	}
	m.tokenFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordErrorResponse(status int) {
	if m == nil {
		return
	}
	m.errorReplies.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *Metrics) RecordCORSRejection() {
	if m == nil {
		return
	}
	m.corsRejected.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
