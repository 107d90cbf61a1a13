// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingest metrics
	NotificationsReceived prometheus.Counter
	DuplicatesSuppressed  prometheus.Counter
	ResolutionFailures    *prometheus.CounterVec
	EventsDecoded         *prometheus.CounterVec
	EventsStored          prometheus.Counter
	EventsArchived        prometheus.Counter

	// Pipeline metrics
	AlertsRecorded     *prometheus.CounterVec
	AlertsDispatched   prometheus.Counter
	QuotaSuppressions  prometheus.Counter
	EnrichmentFailures prometheus.Counter
	PoolWindows        prometheus.Gauge
	QueueDepth         *prometheus.GaugeVec

	// Latency metrics
	ResolutionLatency prometheus.Histogram
	DecisionLatency   prometheus.Histogram
	RPCCallLatency    *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastEventTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "lp_radar"
	}

	return &Metrics{
		// Ingest metrics
		NotificationsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "notifications_received_total",
			Help:      "Total number of log notifications received",
		}),
		DuplicatesSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "duplicates_suppressed_total",
			Help:      "Total number of notifications dropped by the dedup gate",
		}),
		ResolutionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "resolution_failures_total",
			Help:      "Total number of transaction resolution failures by reason",
		}, []string{"reason"}),
		EventsDecoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "events_decoded_total",
			Help:      "Total number of liquidity events decoded by kind",
		}, []string{"kind"}),
		EventsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "events_stored_total",
			Help:      "Total number of liquidity events stored to database",
		}),
		EventsArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "events_archived_total",
			Help:      "Total number of liquidity events appended to the archive",
		}),

		// Pipeline metrics
		AlertsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "recorded_total",
			Help:      "Total number of alerts recorded by outcome",
		}, []string{"outcome"}),
		AlertsDispatched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "dispatched_total",
			Help:      "Total number of alerts dispatched to notifiers",
		}),
		QuotaSuppressions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "quota_suppressions_total",
			Help:      "Total number of accepted alerts held back by the daily quota",
		}),
		EnrichmentFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrich",
			Name:      "failures_total",
			Help:      "Total number of failed market data lookups",
		}),
		PoolWindows: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "signals",
			Name:      "pool_windows",
			Help:      "Current number of pools with live signal windows",
		}),
		QueueDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "queue_depth",
			Help:      "Current depth of internal work queues",
		}, []string{"stage"}),

		// Latency metrics
		ResolutionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "resolution_latency_seconds",
			Help:      "Transaction resolution latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		DecisionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "decision_latency_seconds",
			Help:      "Time to enrich, evaluate, and record a decision for one event",
			Buckets:   prometheus.DefBuckets,
		}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastEventTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_event_timestamp",
			Help:      "Unix timestamp of the most recent stored event",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordNotification increments the notifications received counter.
func RecordNotification() {
	DefaultMetrics.NotificationsReceived.Inc()
}

// RecordDuplicate increments the dedup suppression counter.
func RecordDuplicate() {
	DefaultMetrics.DuplicatesSuppressed.Inc()
}

// RecordResolutionFailure records a resolution failure by reason.
func RecordResolutionFailure(reason string) {
	DefaultMetrics.ResolutionFailures.WithLabelValues(reason).Inc()
}

// RecordEventDecoded increments the decoded events counter for a kind.
func RecordEventDecoded(kind string) {
	DefaultMetrics.EventsDecoded.WithLabelValues(kind).Inc()
}

// RecordEventStored increments the stored events counter and the
// last-event health gauge.
func RecordEventStored(observedAtMs int64) {
	DefaultMetrics.EventsStored.Inc()
	DefaultMetrics.LastEventTimestamp.Set(float64(observedAtMs) / 1000)
}

// RecordAlert records an alert decision by outcome.
func RecordAlert(outcome string, dispatched, quotaSuppressed bool) {
	DefaultMetrics.AlertsRecorded.WithLabelValues(outcome).Inc()
	if dispatched {
		DefaultMetrics.AlertsDispatched.Inc()
	}
	if quotaSuppressed {
		DefaultMetrics.QuotaSuppressions.Inc()
	}
}

// RecordEnrichmentFailure increments the enrichment failure counter.
func RecordEnrichmentFailure() {
	DefaultMetrics.EnrichmentFailures.Inc()
}

// UpdatePoolWindows updates the live pool window gauge.
func UpdatePoolWindows(count int) {
	DefaultMetrics.PoolWindows.Set(float64(count))
}

// UpdateQueueDepth updates a work queue depth gauge.
func UpdateQueueDepth(stage string, depth int) {
	DefaultMetrics.QueueDepth.WithLabelValues(stage).Set(float64(depth))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
