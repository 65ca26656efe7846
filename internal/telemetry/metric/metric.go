// Package metric provides Prometheus metrics for PredKV.
//
// It tracks request rates by type and outcome, the live entry count,
// active connections, and snapshot health.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts dispatched requests by type and status.
	RequestsTotal *prometheus.CounterVec

	// ConnectionsActive tracks currently open client connections.
	ConnectionsActive prometheus.Gauge

	// EntriesLive tracks the current number of store entries.
	EntriesLive prometheus.Gauge

	// SnapshotDuration observes snapshot write latency in seconds.
	SnapshotDuration prometheus.Histogram

	// SnapshotFailures counts failed snapshot writes.
	SnapshotFailures prometheus.Counter
}

// New creates a metrics set backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "predkv",
			Name:      "requests_total",
			Help:      "Requests dispatched, by request type and outcome.",
		}, []string{"type", "status"}),
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "predkv",
			Name:      "connections_active",
			Help:      "Currently open client connections.",
		}),
		EntriesLive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "predkv",
			Name:      "entries_live",
			Help:      "Entries currently held by the store.",
		}),
		SnapshotDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "predkv",
			Name:      "snapshot_duration_seconds",
			Help:      "Snapshot write latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		SnapshotFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "predkv",
			Name:      "snapshot_failures_total",
			Help:      "Snapshot writes that failed.",
		}),
	}
}

// ObserveRequest records one dispatched request.
func (m *Metrics) ObserveRequest(requestType string, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(requestType, status).Inc()
}

// Handler returns the HTTP handler serving this metrics set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
