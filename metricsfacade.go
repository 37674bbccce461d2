package dirq

import (
	"time"

	imetrics "github.com/pavelsr/dirq/internal/metrics"
)

// MetricsCollector receives counts for a queue's lifecycle operations.
// Implementations must be safe for concurrent use. NewMetricsCollector
// and NewPrometheusMetricsCollector provide ready-made implementations.
type MetricsCollector interface {
	RecordAdd(payloadSize int, duration time.Duration)
	RecordAddError()
	RecordLock(acquired bool)
	RecordUnlock()
	RecordRemove()
	RecordTouch()
	RecordPurge(locksReclaimed, tempReclaimed int, duration time.Duration)
}

// NewMetricsCollector returns an in-process MetricsCollector tracking
// operation counts and latency histograms for a queue identified by name.
// Read its state back with GetSnapshot.
func NewMetricsCollector(name string) *imetrics.Collector {
	return imetrics.NewCollector(name)
}

// NewPrometheusMetricsCollector returns a MetricsCollector that is also a
// prometheus.Collector, suitable for prometheus.MustRegister. Pass it to
// WithMetrics to wire queue metrics into the process's default registry or
// any other registry the caller manages.
func NewPrometheusMetricsCollector(name string) *imetrics.PrometheusCollector {
	return imetrics.NewPrometheusCollector(name)
}
