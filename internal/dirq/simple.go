package dirq

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pavelsr/dirq/internal/compress"
	"github.com/pavelsr/dirq/internal/ident"
)

// SimpleQueue stores a single opaque payload per element: one file, one
// rename per commit, no schema.
type SimpleQueue struct {
	*base
	compressPayloads bool
}

// SimpleOption configures a SimpleQueue at construction time.
type SimpleOption func(*SimpleQueue)

// WithCompression enables optional zstd compression of payloads at or
// above compress.MinSize that save at least 5% of their size.
func WithCompression() SimpleOption {
	return func(q *SimpleQueue) { q.compressPayloads = true }
}

// NewSimpleQueue opens or creates a simple queue rooted at cfg.Root.
func NewSimpleQueue(cfg Config, opts ...SimpleOption) (*SimpleQueue, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	q := &SimpleQueue{base: b}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Add writes payload as a new element and returns its identifier.
func (q *SimpleQueue) Add(payload []byte) (string, error) {
	start := time.Now()
	stored := payload
	if q.compressPayloads {
		stored = compress.Encode(payload)
	}

	staging, err := q.stage(func(path string) error {
		return writeFileAtomic(path, stored, q.filePerm, q.umask)
	})
	if err != nil {
		q.metrics.RecordAddError()
		return "", err
	}

	id, err := q.commit(staging)
	if err != nil {
		q.metrics.RecordAddError()
		return "", err
	}
	q.metrics.RecordAdd(len(payload), time.Since(start))
	return id, nil
}

// AddPath adopts an existing file already on the same filesystem into the
// queue via rename, avoiding a copy. The file must not be pre-compressed;
// compress-on-add is skipped for adopted files.
func (q *SimpleQueue) AddPath(path string) (string, error) {
	staging, err := q.stage(func(stagingPath string) error {
		return os.Rename(path, stagingPath)
	})
	if err != nil {
		q.metrics.RecordAddError()
		return "", err
	}
	id, err := q.commit(staging)
	if err != nil {
		q.metrics.RecordAddError()
		return "", err
	}
	q.metrics.RecordAdd(0, 0)
	return id, nil
}

// Get reads id's payload. Must be called only while holding id's lock.
func (q *SimpleQueue) Get(id string) ([]byte, error) {
	path := q.elementPath(id)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingElement, id)
		}
		return nil, fsErr("read", path, err)
	}
	if q.compressPayloads {
		return compress.Decode(content)
	}
	return content, nil
}

// PayloadPath exposes id's on-disk path without reading it into memory,
// useful for large payloads a caller wants to stream or mmap. Only
// meaningful when compression is disabled, since a compressed file's
// bytes on disk are not the caller's original payload.
func (q *SimpleQueue) PayloadPath(id string) (string, error) {
	path := q.elementPath(id)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMissingElement, id)
		}
		return "", fsErr("stat", path, err)
	}
	return path, nil
}

// Lock attempts exclusive acquisition of id by hard-linking a marker to
// its payload file, per the simple flavor's file-shaped on-disk lock
// encoding.
func (q *SimpleQueue) Lock(id string, permissive bool) (bool, error) {
	return q.lockViaHardLink(id, permissive)
}

// Unlock releases id's lock marker.
func (q *SimpleQueue) Unlock(id string, permissive bool) (bool, error) {
	return q.unlock(id, permissive)
}

// Touch refreshes id's lock marker mtime.
func (q *SimpleQueue) Touch(id string) error {
	return q.touch(id)
}

// Remove deletes id's payload and lock marker. The caller must hold the
// lock.
func (q *SimpleQueue) Remove(id string) error {
	return q.removeLocked(id)
}

// isVisible reports whether name in bucket is a committed element with no
// live lock marker. Shared by Count and Next so a full first()/next()
// traversal always yields exactly Count() identifiers.
func (q *SimpleQueue) isVisible(bucket, name string) bool {
	if !ident.IsElementName(name) {
		return false
	}
	_, err := os.Stat(q.lockPath(joinID(bucket, name)))
	return errors.Is(err, fs.ErrNotExist)
}

// Count returns the number of visible (unlocked, present) elements.
func (q *SimpleQueue) Count() (int, error) {
	return q.count(q.isVisible)
}

// First resets iteration to the start of the current bucket snapshot.
func (q *SimpleQueue) First() error {
	return q.first()
}

// Next yields the next visible element identifier, or ("", false, nil)
// when iteration is exhausted.
func (q *SimpleQueue) Next() (string, bool, error) {
	return q.next(q.isVisible)
}

// Purge reclaims stale staging entries and lock markers. An element whose
// stale lock is reclaimed stays in the queue and can be locked again.
func (q *SimpleQueue) Purge(maxTemp, maxLock time.Duration) error {
	_, _, err := q.purge(maxTemp, maxLock, nil)
	return err
}

// StartPurgeTicker runs Purge(maxTemp, maxLock) every interval in the
// background until the returned stop function is called.
func (q *SimpleQueue) StartPurgeTicker(interval, maxTemp, maxLock time.Duration) func() {
	return q.startTicker(interval, func() { _ = q.Purge(maxTemp, maxLock) })
}

// Clone returns a new handle sharing this queue's root and umask, but
// with its own iteration cursor.
func (q *SimpleQueue) Clone() *SimpleQueue {
	return &SimpleQueue{base: q.base.clone(), compressPayloads: q.compressPayloads}
}

// GetAny satisfies the common Queue interface used by Set.
func (q *SimpleQueue) GetAny(id string) (any, error) {
	return q.Get(id)
}
