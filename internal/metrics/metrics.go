// Package metrics registers the Prometheus collectors of the monitor.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	Discovered       *prometheus.CounterVec
	RefreshRuns      *prometheus.CounterVec
	Refreshed        *prometheus.CounterVec
}

// New creates the collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_upstream_requests_total",
			Help: "Upstream vulnerability database requests by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	m.UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "monitor_upstream_request_duration_seconds",
			Help:    "Duration of upstream vulnerability database requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	m.Discovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_vulnerabilities_discovered_total",
			Help: "Vulnerabilities newly recorded against components",
		},
		[]string{"source"},
	)

	m.RefreshRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_refresh_runs_total",
			Help: "Refresh-all runs by trigger",
		},
		[]string{"trigger"},
	)

	m.Refreshed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_components_refreshed_total",
			Help: "Component refreshes by outcome",
		},
		[]string{"outcome"},
	)

	m.registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.Discovered,
		m.RefreshRuns,
		m.Refreshed,
		collectors.NewGoCollector(),
	)

	return m
}

// ObserveUpstream records one upstream call.
func (m *Metrics) ObserveUpstream(source string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(source, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
}

// AddDiscovered counts newly stored vulnerabilities.
func (m *Metrics) AddDiscovered(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Discovered.WithLabelValues(source).Add(float64(n))
}

// IncRefreshRun counts a refresh-all run.
func (m *Metrics) IncRefreshRun(trigger string) {
	if m == nil {
		return
	}
	m.RefreshRuns.WithLabelValues(trigger).Inc()
}

// IncRefreshed counts a single component refresh.
func (m *Metrics) IncRefreshed(outcome string) {
	if m == nil {
		return
	}
	m.Refreshed.WithLabelValues(outcome).Inc()
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
