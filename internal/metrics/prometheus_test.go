package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusCollectorRegistersAndCollects(t *testing.T) {
	p := NewPrometheusCollector("test_queue")

	p.RecordAdd(100, time.Millisecond)
	p.RecordAddError()
	p.RecordLock(true)
	p.RecordLock(false)
	p.RecordUnlock()
	p.RecordRemove()
	p.RecordTouch()
	p.RecordPurge(2, 1, 5*time.Millisecond)

	count := testutil.CollectAndCount(p)
	if count == 0 {
		t.Fatal("expected at least one collected metric family")
	}

	if snapshot := p.Snapshot(); snapshot.AddTotal != 1 {
		t.Errorf("Snapshot().AddTotal = %d, want 1", snapshot.AddTotal)
	}
}
