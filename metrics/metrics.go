package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "knucklebone"

// Metrics holds the bot's Prometheus collectors.
type Metrics struct {
	// Command metrics
	CommandTotal    *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Check outcomes by category
	CheckOutcomes *prometheus.CounterVec

	// Storage operation metrics
	StorageOperationTotal    *prometheus.CounterVec
	StorageOperationDuration *prometheus.HistogramVec
}

// New creates and registers all metrics on registry.
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		CommandTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "command",
				Name:      "total",
				Help:      "Total number of command invocations",
			},
			[]string{"command", "status"}, // "ok", "user_error", "internal_error"
		),

		CommandDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "command",
				Name:      "duration_seconds",
				Help:      "Histogram of command handling latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		CheckOutcomes: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "check",
				Name:      "outcomes_total",
				Help:      "Total number of checks by outcome category",
			},
			[]string{"category"},
		),

		StorageOperationTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "storage",
				Name:      "operation_total",
				Help:      "Total number of storage operations",
			},
			[]string{"operation", "status"},
		),

		StorageOperationDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "storage",
				Name:      "operation_duration_seconds",
				Help:      "Histogram of storage operation latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}
