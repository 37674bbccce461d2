package dirq

import (
	"time"

	"testing"
)

// fakeQueue implements Queue over a fixed, pre-sorted id sequence, letting
// set merge tests assert exact interleaving without depending on real
// filesystem timing.
type fakeQueue struct {
	ids []string
	idx int
}

func (f *fakeQueue) First() error { f.idx = 0; return nil }

func (f *fakeQueue) Next() (string, bool, error) {
	if f.idx >= len(f.ids) {
		return "", false, nil
	}
	id := f.ids[f.idx]
	f.idx++
	return id, true, nil
}

func (f *fakeQueue) Count() (int, error) { return len(f.ids), nil }
func (f *fakeQueue) Lock(string, bool) (bool, error) { return true, nil }
func (f *fakeQueue) Unlock(string, bool) (bool, error) { return true, nil }
func (f *fakeQueue) Touch(string) error { return nil }
func (f *fakeQueue) Remove(string) error { return nil }
func (f *fakeQueue) Purge(time.Duration, time.Duration) error { return nil }
func (f *fakeQueue) GetAny(string) (any, error) { return nil, nil }

func TestSetNextInterleavesByIDAcrossMembers(t *testing.T) {
	q1 := &fakeQueue{ids: []string{
		"00000000/00000000000001",
		"00000000/00000000000003",
		"00000000/00000000000005",
	}}
	q2 := &fakeQueue{ids: []string{
		"00000000/00000000000002",
		"00000000/00000000000004",
	}}

	set := NewSet(q1, q2)
	assertNoError(t, set.First())

	var gotIDs []string
	var gotQueues []int
	for {
		ref, ok, err := set.Next()
		assertNoError(t, err)
		if !ok {
			break
		}
		gotIDs = append(gotIDs, ref.ID)
		gotQueues = append(gotQueues, ref.QueueIndex)
	}

	wantIDs := []string{
		"00000000/00000000000001",
		"00000000/00000000000002",
		"00000000/00000000000003",
		"00000000/00000000000004",
		"00000000/00000000000005",
	}
	wantQueues := []int{0, 1, 0, 1, 0}

	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("got %d ids, want %d: %v", len(gotIDs), len(wantIDs), gotIDs)
	}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Fatalf("position %d: got id %s, want %s", i, gotIDs[i], wantIDs[i])
		}
		if gotQueues[i] != wantQueues[i] {
			t.Fatalf("position %d: got queue %d, want %d", i, gotQueues[i], wantQueues[i])
		}
	}
}

func TestSetNextCoversAllMembers(t *testing.T) {
	q1 := setupSimpleQueue(t)
	q2 := setupSimpleQueue(t)

	x1, err := q1.Add([]byte("x1"))
	assertNoError(t, err)
	y1, err := q2.Add([]byte("y1"))
	assertNoError(t, err)
	y2, err := q2.Add([]byte("y2"))
	assertNoError(t, err)

	set := NewSet(q1, q2)
	assertNoError(t, set.First())

	var refs []ElementRef
	for {
		ref, ok, err := set.Next()
		assertNoError(t, err)
		if !ok {
			break
		}
		refs = append(refs, ref)
	}
	if len(refs) != 3 {
		t.Fatalf("expected 3 elements across the set, got %d", len(refs))
	}

	seen := map[string]bool{}
	for _, ref := range refs {
		seen[ref.ID] = true
	}
	for _, id := range []string{x1, y1, y2} {
		if !seen[id] {
			t.Fatalf("expected id %s to appear in set iteration", id)
		}
	}
}

func TestSetCountSumsMembers(t *testing.T) {
	q1 := setupSimpleQueue(t)
	q2 := setupSimpleQueue(t)
	_, _ = q1.Add([]byte("a"))
	_, _ = q2.Add([]byte("b"))
	_, _ = q2.Add([]byte("c"))

	set := NewSet(q1, q2)
	count, err := set.Count()
	assertNoError(t, err)
	if count != 3 {
		t.Fatalf("Count() = %d, want 3", count)
	}
}

func TestSetDispatchesLockGetRemoveToCorrectQueue(t *testing.T) {
	q1 := setupSimpleQueue(t)
	q2 := setupSimpleQueue(t)
	id1, err := q1.Add([]byte("from-q1"))
	assertNoError(t, err)

	set := NewSet(q1, q2)
	ref := ElementRef{QueueIndex: 0, ID: id1}

	ok, err := set.Lock(ref, false)
	assertNoError(t, err)
	if !ok {
		t.Fatalf("expected lock to succeed")
	}

	payload, err := set.Get(ref)
	assertNoError(t, err)
	if string(payload.([]byte)) != "from-q1" {
		t.Fatalf("Get() = %v, want %q", payload, "from-q1")
	}

	assertNoError(t, set.Remove(ref))

	directGet, err := q1.Get(id1)
	_ = directGet
	assertError(t, err)
}

func TestSetAddQueueAndRemoveQueue(t *testing.T) {
	q1 := setupSimpleQueue(t)
	set := NewSet(q1)
	if len(set.Members()) != 1 {
		t.Fatalf("expected 1 member, got %d", len(set.Members()))
	}

	q2 := setupSimpleQueue(t)
	set.AddQueue(q2)
	if len(set.Members()) != 2 {
		t.Fatalf("expected 2 members after AddQueue, got %d", len(set.Members()))
	}

	assertNoError(t, set.RemoveQueue(0))
	if len(set.Members()) != 1 {
		t.Fatalf("expected 1 member after RemoveQueue, got %d", len(set.Members()))
	}
	if set.Members()[0] != q2 {
		t.Fatalf("expected remaining member to be q2")
	}
}

func TestSetRemoveQueueOutOfRange(t *testing.T) {
	set := NewSet(setupSimpleQueue(t))
	assertError(t, set.RemoveQueue(5))
}

func TestSetPurgeFansOutAcrossMembers(t *testing.T) {
	q1 := setupSimpleQueue(t)
	q2 := setupSimpleQueue(t)
	id1, err := q1.Add([]byte("a"))
	assertNoError(t, err)

	ok, err := q1.Lock(id1, false)
	assertNoError(t, err)
	if !ok {
		t.Fatalf("expected lock")
	}

	set := NewSet(q1, q2)
	assertNoError(t, set.Purge(0, 0))

	relocked, err := q1.Lock(id1, false)
	assertNoError(t, err)
	if !relocked {
		t.Fatalf("expected set-wide purge to reclaim the stale lock on q1")
	}
}
