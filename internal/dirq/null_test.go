package dirq

import "testing"

func TestNullAddDiscardsAndReturnsID(t *testing.T) {
	q := NewNullQueue()
	id, err := q.Add([]byte("anything"))
	assertNoError(t, err)
	if id == "" {
		t.Fatalf("expected a synthetic identifier")
	}
}

func TestNullCountAlwaysZero(t *testing.T) {
	q := NewNullQueue()
	_, _ = q.Add([]byte("x"))
	_, _ = q.Add([]byte("y"))
	count, err := q.Count()
	assertNoError(t, err)
	if count != 0 {
		t.Fatalf("Count() = %d, want 0", count)
	}
}

func TestNullFirstNextYieldsNothing(t *testing.T) {
	q := NewNullQueue()
	_, _ = q.Add([]byte("x"))
	assertNoError(t, q.First())
	_, ok, err := q.Next()
	assertNoError(t, err)
	if ok {
		t.Fatalf("expected no elements from a null queue's iteration")
	}
}

func TestNullLockGetRemoveTouchFailMissingElement(t *testing.T) {
	q := NewNullQueue()
	id, err := q.Add([]byte("x"))
	assertNoError(t, err)

	if _, err := q.Lock(id, false); err == nil {
		t.Fatalf("expected Lock to fail with MissingElement")
	}
	if ok, err := q.Lock(id, true); err != nil || ok {
		t.Fatalf("expected permissive Lock to return (false, nil), got (%v, %v)", ok, err)
	}
	if _, err := q.Get(id); err == nil {
		t.Fatalf("expected Get to fail with MissingElement")
	}
	if err := q.Remove(id); err == nil {
		t.Fatalf("expected Remove to fail with MissingElement")
	}
	if err := q.Touch(id); err == nil {
		t.Fatalf("expected Touch to fail with MissingElement")
	}
}

func TestNullPurgeIsNoop(t *testing.T) {
	q := NewNullQueue()
	assertNoError(t, q.Purge(0, 0))
}
