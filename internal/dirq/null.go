package dirq

import (
	"fmt"
	"time"
)

// NullQueue satisfies the queue contract but discards every write and
// reports empty, letting callers be configured to dry-run without
// conditional code paths.
type NullQueue struct {
	counter uint64
}

// NewNullQueue returns a ready-to-use null queue. It requires no root
// directory and performs no filesystem I/O.
func NewNullQueue() *NullQueue {
	return &NullQueue{}
}

// Add discards payload and returns a synthetic identifier.
func (q *NullQueue) Add(payload []byte) (string, error) {
	q.counter++
	return fmt.Sprintf("00000000/%014x", q.counter), nil
}

// Get always fails: a null queue never holds a payload.
func (q *NullQueue) Get(id string) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s", ErrMissingElement, id)
}

// GetAny satisfies the common Queue interface used by Set.
func (q *NullQueue) GetAny(id string) (any, error) {
	return q.Get(id)
}

// Lock always fails: there is nothing to lock.
func (q *NullQueue) Lock(id string, permissive bool) (bool, error) {
	if permissive {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s", ErrMissingElement, id)
}

// Unlock always fails: there is nothing to unlock.
func (q *NullQueue) Unlock(id string, permissive bool) (bool, error) {
	if permissive {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s", ErrMissingElement, id)
}

// Touch always fails: there is nothing to touch.
func (q *NullQueue) Touch(id string) error {
	return fmt.Errorf("%w: %s", ErrMissingElement, id)
}

// Remove always fails: there is nothing to remove.
func (q *NullQueue) Remove(id string) error {
	return fmt.Errorf("%w: %s", ErrMissingElement, id)
}

// Count is always zero.
func (q *NullQueue) Count() (int, error) { return 0, nil }

// First is a no-op: iteration yields nothing.
func (q *NullQueue) First() error { return nil }

// Next always reports iteration exhausted.
func (q *NullQueue) Next() (string, bool, error) { return "", false, nil }

// Purge is a no-op: there is no on-disk state to reclaim.
func (q *NullQueue) Purge(maxTemp, maxLock time.Duration) error { return nil }
