// Package metrics provides an in-process metrics collector for queue
// lifecycle operations, plus an optional Prometheus-backed implementation
// in prometheus.go. Metrics collection is entirely optional: every queue
// flavor defaults to a no-op collector when none is configured.
package metrics

import (
	"sync/atomic"
	"time"
)

// Collector tracks operation counts and latencies for one queue instance.
// It satisfies the dirq.MetricsCollector interface and can be used
// standalone for introspection, or wrapped by a Prometheus collector.
type Collector struct {
	queueName string

	addTotal    atomic.Uint64
	addErrors   atomic.Uint64
	addBytes    atomic.Uint64
	lockHits    atomic.Uint64
	lockMisses  atomic.Uint64
	unlockTotal atomic.Uint64
	removeTotal atomic.Uint64
	touchTotal  atomic.Uint64

	addDurations *durationHistogram

	purgeTotal          atomic.Uint64
	purgeLocksReclaimed atomic.Uint64
	purgeTempReclaimed  atomic.Uint64
	lastPurgeUnixSec    atomic.Int64
	purgeDurations      *durationHistogram
}

// NewCollector creates a metrics collector for a queue identified by name,
// which is typically the queue's root directory.
func NewCollector(queueName string) *Collector {
	return &Collector{
		queueName:      queueName,
		addDurations:   newDurationHistogram(),
		purgeDurations: newDurationHistogram(),
	}
}

// RecordAdd records a successful add operation.
func (c *Collector) RecordAdd(payloadSize int, duration time.Duration) {
	c.addTotal.Add(1)
	c.addBytes.Add(uint64(payloadSize))
	c.addDurations.observe(duration)
}

// RecordAddError records an add failure.
func (c *Collector) RecordAddError() {
	c.addErrors.Add(1)
}

// RecordLock records a lock attempt, successful or not.
func (c *Collector) RecordLock(acquired bool) {
	if acquired {
		c.lockHits.Add(1)
	} else {
		c.lockMisses.Add(1)
	}
}

// RecordUnlock records a successful unlock.
func (c *Collector) RecordUnlock() {
	c.unlockTotal.Add(1)
}

// RecordRemove records a successful element removal.
func (c *Collector) RecordRemove() {
	c.removeTotal.Add(1)
}

// RecordTouch records a successful lock heartbeat.
func (c *Collector) RecordTouch() {
	c.touchTotal.Add(1)
}

// RecordPurge records one purge pass, including how many stale locks and
// staging entries it reclaimed.
func (c *Collector) RecordPurge(locksReclaimed, tempReclaimed int, duration time.Duration) {
	c.purgeTotal.Add(1)
	c.purgeLocksReclaimed.Add(uint64(locksReclaimed))
	c.purgeTempReclaimed.Add(uint64(tempReclaimed))
	c.purgeDurations.observe(duration)
	c.lastPurgeUnixSec.Store(time.Now().Unix())
}

// GetSnapshot returns a point-in-time view of every tracked metric.
func (c *Collector) GetSnapshot() *Snapshot {
	return &Snapshot{
		QueueName:           c.queueName,
		AddTotal:            c.addTotal.Load(),
		AddErrors:           c.addErrors.Load(),
		AddBytes:            c.addBytes.Load(),
		LockHits:            c.lockHits.Load(),
		LockMisses:          c.lockMisses.Load(),
		UnlockTotal:         c.unlockTotal.Load(),
		RemoveTotal:         c.removeTotal.Load(),
		TouchTotal:          c.touchTotal.Load(),
		AddDurationP50:      c.addDurations.percentile(0.50),
		AddDurationP95:      c.addDurations.percentile(0.95),
		AddDurationP99:      c.addDurations.percentile(0.99),
		PurgeTotal:          c.purgeTotal.Load(),
		PurgeLocksReclaimed: c.purgeLocksReclaimed.Load(),
		PurgeTempReclaimed:  c.purgeTempReclaimed.Load(),
		PurgeDurationP50:    c.purgeDurations.percentile(0.50),
		PurgeDurationP99:    c.purgeDurations.percentile(0.99),
		LastPurgeUnixSec:    c.lastPurgeUnixSec.Load(),
	}
}

// Reset zeroes every metric. Useful for tests.
func (c *Collector) Reset() {
	c.addTotal.Store(0)
	c.addErrors.Store(0)
	c.addBytes.Store(0)
	c.lockHits.Store(0)
	c.lockMisses.Store(0)
	c.unlockTotal.Store(0)
	c.removeTotal.Store(0)
	c.touchTotal.Store(0)
	c.addDurations = newDurationHistogram()
	c.purgeTotal.Store(0)
	c.purgeLocksReclaimed.Store(0)
	c.purgeTempReclaimed.Store(0)
	c.purgeDurations = newDurationHistogram()
	c.lastPurgeUnixSec.Store(0)
}

// Snapshot is a point-in-time view of a Collector's counters.
type Snapshot struct {
	QueueName string

	AddTotal  uint64
	AddErrors uint64
	AddBytes  uint64

	LockHits    uint64
	LockMisses  uint64
	UnlockTotal uint64
	RemoveTotal uint64
	TouchTotal  uint64

	AddDurationP50 time.Duration
	AddDurationP95 time.Duration
	AddDurationP99 time.Duration

	PurgeTotal          uint64
	PurgeLocksReclaimed uint64
	PurgeTempReclaimed  uint64
	PurgeDurationP50    time.Duration
	PurgeDurationP99    time.Duration
	LastPurgeUnixSec    int64
}

// durationHistogram is a fixed-bucket histogram used to approximate
// percentiles without storing individual samples.
type durationHistogram struct {
	buckets [10]atomic.Uint64
}

func newDurationHistogram() *durationHistogram {
	return &durationHistogram{}
}

// observe records a duration in the appropriate bucket.
func (h *durationHistogram) observe(d time.Duration) {
	micros := d.Microseconds()
	var bucket int

	// Bucket boundaries (microseconds):
	// 0: < 1μs, 1: 1-10μs, 2: 10-100μs, 3: 100μs-1ms
	// 4: 1-10ms, 5: 10-100ms, 6: 100ms-1s, 7: 1-10s, 8: 10-100s, 9: >=100s
	switch {
	case micros < 1:
		bucket = 0
	case micros < 10:
		bucket = 1
	case micros < 100:
		bucket = 2
	case micros < 1000:
		bucket = 3
	case micros < 10000:
		bucket = 4
	case micros < 100000:
		bucket = 5
	case micros < 1000000:
		bucket = 6
	case micros < 10000000:
		bucket = 7
	case micros < 100000000:
		bucket = 8
	default:
		bucket = 9
	}

	h.buckets[bucket].Add(1)
}

// percentile approximates a percentile from histogram buckets.
func (h *durationHistogram) percentile(p float64) time.Duration {
	var total uint64
	for i := 0; i < 10; i++ {
		total += h.buckets[i].Load()
	}
	if total == 0 {
		return 0
	}

	target := uint64(float64(total) * p)
	var count uint64
	for i := 0; i < 10; i++ {
		count += h.buckets[i].Load()
		if count >= target {
			switch i {
			case 0:
				return 500 * time.Nanosecond
			case 1:
				return 5 * time.Microsecond
			case 2:
				return 50 * time.Microsecond
			case 3:
				return 500 * time.Microsecond
			case 4:
				return 5 * time.Millisecond
			case 5:
				return 50 * time.Millisecond
			case 6:
				return 500 * time.Millisecond
			case 7:
				return 5 * time.Second
			case 8:
				return 50 * time.Second
			default:
				return 100 * time.Second
			}
		}
	}
	return 0
}

// NoopCollector discards every observation. Used when metrics are disabled.
type NoopCollector struct{}

func (NoopCollector) RecordAdd(int, time.Duration)        {}
func (NoopCollector) RecordAddError()                     {}
func (NoopCollector) RecordLock(bool)                     {}
func (NoopCollector) RecordUnlock()                        {}
func (NoopCollector) RecordRemove()                        {}
func (NoopCollector) RecordTouch()                         {}
func (NoopCollector) RecordPurge(int, int, time.Duration)  {}
func (NoopCollector) GetSnapshot() *Snapshot               { return nil }
func (NoopCollector) Reset()                               {}
