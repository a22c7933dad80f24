package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreMutations counts store mutations by collection, operation and outcome.
	StoreMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sublet_store_mutations_total",
		Help: "Total number of domain store mutations",
	}, []string{"collection", "operation", "outcome"})

	// StoreRecords is the gauge of records held per collection.
	StoreRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sublet_store_records",
		Help: "Number of records held in the domain store per collection",
	}, []string{"collection"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sublet_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records snapshot query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sublet_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// SessionsIssued counts session tokens issued by identify.
	SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sublet_sessions_issued_total",
		Help: "Total number of session tokens issued",
	})
)

// RecordMutation increments StoreMutations for the outcome of err.
func RecordMutation(collection, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	StoreMutations.WithLabelValues(collection, operation, outcome).Inc()
}

// DatabaseMetrics records query latency.
type DatabaseMetrics struct{}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
