package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Session gate outcomes
const (
	outcomePass      = "pass"
	outcomeAllow     = "allow"
	outcomeRefreshed = "refreshed"
	outcomeDeny      = "deny"
)

// metrics are registered on a per-server registry so independent servers (and tests) never collide
type metrics struct {
	registry         *prometheus.Registry
	sessionDecisions *prometheus.CounterVec
	requests         *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		sessionDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact",
			Name:      "session_decisions_total",
			Help:      "Session middleware decisions by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "impact",
			Name:      "http_requests_total",
			Help:      "HTTP responses by method and status code.",
		}, []string{"method", "code"}),
	}
	m.registry.MustRegister(
		m.sessionDecisions,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) decision(outcome string) {
	m.sessionDecisions.WithLabelValues(outcome).Inc()
}
