package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector wraps a Collector and exposes it to Prometheus as a
// prometheus.Collector: every observation is recorded both in the inner
// Collector and in prometheus counters and histograms, which a scrape
// reads directly. Unlike Collector, it is meant to be registered once with
// a registry; the inner Collector's view is available through Snapshot.
type PrometheusCollector struct {
	inner *Collector

	addTotal    prometheus.Counter
	addErrors   prometheus.Counter
	addBytes    prometheus.Counter
	lockHits    prometheus.Counter
	lockMisses  prometheus.Counter
	unlockTotal prometheus.Counter
	removeTotal prometheus.Counter
	touchTotal  prometheus.Counter

	addDuration   prometheus.Histogram
	purgeDuration prometheus.Histogram

	purgeTotal          prometheus.Counter
	purgeLocksReclaimed prometheus.Counter
	purgeTempReclaimed  prometheus.Counter
}

// NewPrometheusCollector builds a PrometheusCollector for queueName,
// labelling every metric with a "dirq_" prefix so that multiple queue
// subsystems can share a single registry without name collisions.
func NewPrometheusCollector(queueName string) *PrometheusCollector {
	constLabels := prometheus.Labels{"queue": queueName}
	return &PrometheusCollector{
		inner: NewCollector(queueName),

		addTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_add_total",
			Help:        "Total number of elements added to the queue.",
			ConstLabels: constLabels,
		}),
		addErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_add_errors_total",
			Help:        "Total number of failed add operations.",
			ConstLabels: constLabels,
		}),
		addBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_add_bytes_total",
			Help:        "Total bytes written across all add operations.",
			ConstLabels: constLabels,
		}),
		lockHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_lock_hits_total",
			Help:        "Total number of lock attempts that acquired the lock.",
			ConstLabels: constLabels,
		}),
		lockMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_lock_misses_total",
			Help:        "Total number of lock attempts that found the element already locked.",
			ConstLabels: constLabels,
		}),
		unlockTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_unlock_total",
			Help:        "Total number of successful unlock operations.",
			ConstLabels: constLabels,
		}),
		removeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_remove_total",
			Help:        "Total number of elements removed from the queue.",
			ConstLabels: constLabels,
		}),
		touchTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_touch_total",
			Help:        "Total number of lock heartbeat refreshes.",
			ConstLabels: constLabels,
		}),
		addDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "dirq_add_duration_seconds",
			Help:        "Duration of add operations in seconds.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		purgeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "dirq_purge_duration_seconds",
			Help:        "Duration of purge passes in seconds.",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		purgeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_purge_total",
			Help:        "Total number of purge passes run.",
			ConstLabels: constLabels,
		}),
		purgeLocksReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_purge_locks_reclaimed_total",
			Help:        "Total number of stale lock markers reclaimed by purge.",
			ConstLabels: constLabels,
		}),
		purgeTempReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "dirq_purge_temporary_reclaimed_total",
			Help:        "Total number of stale staging entries reclaimed by purge.",
			ConstLabels: constLabels,
		}),
	}
}

// RecordAdd implements dirq.MetricsCollector.
func (p *PrometheusCollector) RecordAdd(payloadSize int, duration time.Duration) {
	p.inner.RecordAdd(payloadSize, duration)
	p.addTotal.Inc()
	p.addBytes.Add(float64(payloadSize))
	p.addDuration.Observe(duration.Seconds())
}

// RecordAddError implements dirq.MetricsCollector.
func (p *PrometheusCollector) RecordAddError() {
	p.inner.RecordAddError()
	p.addErrors.Inc()
}

// RecordLock implements dirq.MetricsCollector.
func (p *PrometheusCollector) RecordLock(acquired bool) {
	p.inner.RecordLock(acquired)
	if acquired {
		p.lockHits.Inc()
	} else {
		p.lockMisses.Inc()
	}
}

// RecordUnlock implements dirq.MetricsCollector.
func (p *PrometheusCollector) RecordUnlock() {
	p.inner.RecordUnlock()
	p.unlockTotal.Inc()
}

// RecordRemove implements dirq.MetricsCollector.
func (p *PrometheusCollector) RecordRemove() {
	p.inner.RecordRemove()
	p.removeTotal.Inc()
}

// RecordTouch implements dirq.MetricsCollector.
func (p *PrometheusCollector) RecordTouch() {
	p.inner.RecordTouch()
	p.touchTotal.Inc()
}

// RecordPurge implements dirq.MetricsCollector.
func (p *PrometheusCollector) RecordPurge(locksReclaimed, tempReclaimed int, duration time.Duration) {
	p.inner.RecordPurge(locksReclaimed, tempReclaimed, duration)
	p.purgeTotal.Inc()
	p.purgeLocksReclaimed.Add(float64(locksReclaimed))
	p.purgeTempReclaimed.Add(float64(tempReclaimed))
	p.purgeDuration.Observe(duration.Seconds())
}

// Snapshot exposes the underlying Collector's in-process view, for
// callers that want a cheap read without scraping Prometheus.
func (p *PrometheusCollector) Snapshot() *Snapshot {
	return p.inner.GetSnapshot()
}

// Describe implements prometheus.Collector.
func (p *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range p.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (p *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	for _, c := range p.collectors() {
		c.Collect(ch)
	}
}

func (p *PrometheusCollector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.addTotal, p.addErrors, p.addBytes,
		p.lockHits, p.lockMisses, p.unlockTotal,
		p.removeTotal, p.touchTotal,
		p.addDuration, p.purgeDuration,
		p.purgeTotal, p.purgeLocksReclaimed, p.purgeTempReclaimed,
	}
}
