package dirq

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupTypedQueue(t *testing.T, schemaString string, opts ...TypedOption) *TypedQueue {
	t.Helper()
	q, err := NewTypedQueue(Config{Root: t.TempDir()}, schemaString, opts...)
	assertNoError(t, err)
	return q
}

func setupSimpleQueue(t *testing.T, opts ...SimpleOption) *SimpleQueue {
	t.Helper()
	q, err := NewSimpleQueue(Config{Root: t.TempDir()}, opts...)
	assertNoError(t, err)
	return q
}

func drainIDs(t *testing.T, q interface {
	First() error
	Next() (string, bool, error)
}) []string {
	t.Helper()
	assertNoError(t, q.First())
	var ids []string
	for {
		id, ok, err := q.Next()
		assertNoError(t, err)
		if !ok {
			break
		}
		ids = append(ids, id)
	}
	return ids
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
}

// waitFor polls cond until it returns true or timeout elapses, used for
// assertions against the background purge ticker.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}
