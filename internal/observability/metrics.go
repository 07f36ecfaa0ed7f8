// Package observability provides Prometheus metrics for the recon batch tools.
package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "bounty_recon"

// Metrics holds the Prometheus metrics of one batch run.
// Each run owns its registry; batch jobs push it to a Pushgateway instead of being scraped.
// All Record methods are safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Fetch metrics
	FetchDuration  prometheus.Histogram
	FetchFailures  prometheus.Counter
	ProtocolsFound prometheus.Gauge

	// Pipeline metrics
	TargetsProcessed  prometheus.Counter
	LiveUpdates       prometheus.Counter
	TargetsByPriority *prometheus.GaugeVec
	RunDuration       prometheus.Histogram

	// Storage metrics
	StoreErrors *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "defillama",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the protocols fetch in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "defillama",
			Name:      "fetch_failures_total",
			Help:      "Total number of failed protocols fetches",
		}),
		ProtocolsFound: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "defillama",
			Name:      "protocols",
			Help:      "Number of protocol descriptors in the last fetch",
		}),

		TargetsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "targets_processed_total",
			Help:      "Total number of targets enriched",
		}),
		LiveUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "live_tvl_updates_total",
			Help:      "Total number of targets whose TVL was refreshed from the API",
		}),
		TargetsByPriority: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "targets",
			Help:      "Number of targets by priority class in the last run",
		}, []string{"priority"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Refresh run duration in seconds",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60},
		}),

		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of snapshot storage errors",
		}, []string{"store"}),

		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful refresh run",
		}),
	}
}

// Registry returns the registry all metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordFetch records one protocols fetch.
func (m *Metrics) RecordFetch(seconds float64, protocols int, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(seconds)
	if err != nil {
		m.FetchFailures.Inc()
		return
	}
	m.ProtocolsFound.Set(float64(protocols))
}

// RecordTarget records one enriched target.
func (m *Metrics) RecordTarget(live bool) {
	if m == nil {
		return
	}
	m.TargetsProcessed.Inc()
	if live {
		m.LiveUpdates.Inc()
	}
}

// RecordPriorityCount sets the gauge for one priority class.
func (m *Metrics) RecordPriorityCount(priority string, count int) {
	if m == nil {
		return
	}
	m.TargetsByPriority.WithLabelValues(priority).Set(float64(count))
}

// RecordRun records a completed run.
func (m *Metrics) RecordRun(seconds float64, finishedUnix int64) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(seconds)
	m.LastSuccessfulRun.Set(float64(finishedUnix))
}

// RecordStoreError records a snapshot storage failure.
func (m *Metrics) RecordStoreError(store string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(store).Inc()
}

// Push sends all metrics to a Pushgateway under the given job name.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
