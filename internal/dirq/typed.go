package dirq

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pavelsr/dirq/internal/codec"
	"github.com/pavelsr/dirq/internal/compress"
	"github.com/pavelsr/dirq/internal/fsutil"
	"github.com/pavelsr/dirq/internal/ident"
	"github.com/pavelsr/dirq/internal/schema"
)

// TypedQueue stores schema-validated multi-field records, one file per
// declared field, under an element directory.
type TypedQueue struct {
	*base
	schema         *schema.Schema
	compressBinary bool
}

// TypedOption configures a TypedQueue at construction time.
type TypedOption func(*TypedQueue)

// WithBinaryCompression enables zstd compression of binary-kind field
// files at or above compress.MinSize that save at least 5% of their
// size. String and table fields are unaffected: they are already
// percent-escaped text, not a good compression candidate, and must stay
// byte-for-byte interoperable with sibling implementations.
func WithBinaryCompression() TypedOption {
	return func(q *TypedQueue) { q.compressBinary = true }
}

// NewTypedQueue opens or creates a typed queue rooted at cfg.Root,
// validating every record written to it against the parsed schema.
func NewTypedQueue(cfg Config, schemaString string, opts ...TypedOption) (*TypedQueue, error) {
	sch, err := schema.Parse(schemaString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if len(sch.Fields()) == 0 {
		return nil, fmt.Errorf("%w: schema must declare at least one field", ErrInvalidConfiguration)
	}
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	q := &TypedQueue{base: b, schema: sch}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Add validates record against the schema and commits it as a new
// element, returning its identifier.
func (q *TypedQueue) Add(record codec.Record) (string, error) {
	start := time.Now()
	if err := q.schema.Validate(record); err != nil {
		q.metrics.RecordAddError()
		return "", fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	size := 0
	staging, err := q.stage(func(dir string) error {
		if err := fsutil.EnsureDir(dir, q.dirPerm, q.umask); err != nil {
			return err
		}
		for _, f := range q.schema.Fields() {
			v, present := record[f.Name]
			if !present {
				continue
			}
			content, err := q.encodeField(f, v)
			if err != nil {
				return err
			}
			size += len(content)
			path := filepath.Join(dir, f.FileName())
			if err := writeFileAtomic(path, content, q.filePerm, q.umask); err != nil {
				return err
			}
		}
		return nil
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
	q.metrics.RecordAdd(size, time.Since(start))
	return id, nil
}

func (q *TypedQueue) encodeField(f schema.Field, v codec.Value) ([]byte, error) {
	switch f.Kind {
	case schema.KindBinary:
		if q.compressBinary {
			return compress.Encode(v.Bytes()), nil
		}
		return v.Bytes(), nil
	case schema.KindString:
		return []byte(codec.EscapeValue(v.Text)), nil
	case schema.KindTable:
		// A table field's value is built by the caller as the already
		// codec.Encode'd form of a flattened record; stored verbatim.
		if _, err := codec.Decode([]byte(v.Text)); err != nil {
			return nil, fmt.Errorf("%w: field %q is not a valid encoded table: %v", ErrInvalidConfiguration, f.Name, err)
		}
		return []byte(v.Text), nil
	default:
		return nil, fmt.Errorf("%w: field %q has unsupported kind", ErrInvalidConfiguration, f.Name)
	}
}

// Get reads every declared field present under id's element directory and
// returns the assembled record. Must be called only while holding id's
// lock; reading without the lock is an unenforced logical race.
func (q *TypedQueue) Get(id string) (codec.Record, error) {
	dir := q.elementPath(id)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingElement, id)
		}
		return nil, fsErr("stat", dir, err)
	}

	record := make(codec.Record)
	for _, f := range q.schema.Fields() {
		path := filepath.Join(dir, f.FileName())
		content, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // optional field absent, or required field missing from a legacy write
			}
			return nil, fsErr("read", path, err)
		}
		v, err := q.decodeField(f, content)
		if err != nil {
			return nil, err
		}
		record[f.Name] = v
	}
	return record, nil
}

func (q *TypedQueue) decodeField(f schema.Field, content []byte) (codec.Value, error) {
	switch f.Kind {
	case schema.KindBinary:
		if q.compressBinary {
			decoded, err := compress.Decode(content)
			if err != nil {
				return codec.Value{}, fmt.Errorf("%w: field %q: %v", ErrInvalidConfiguration, f.Name, err)
			}
			return codec.Binary(decoded), nil
		}
		return codec.Binary(content), nil
	case schema.KindString:
		text, err := codec.UnescapeValue(string(content))
		if err != nil {
			return codec.Value{}, err
		}
		return codec.String(text), nil
	case schema.KindTable:
		return codec.String(string(content)), nil
	default:
		return codec.Value{}, fmt.Errorf("%w: field %q has unsupported kind", ErrInvalidConfiguration, f.Name)
	}
}

// Lock attempts exclusive acquisition of id via a mkdir marker, mirroring
// the element directory's own on-disk shape.
func (q *TypedQueue) Lock(id string, permissive bool) (bool, error) {
	return q.lockViaMkdir(id, permissive)
}

// Unlock releases id's lock marker.
func (q *TypedQueue) Unlock(id string, permissive bool) (bool, error) {
	return q.unlock(id, permissive)
}

// Touch refreshes id's lock marker mtime.
func (q *TypedQueue) Touch(id string) error {
	return q.touch(id)
}

// Remove deletes id's payload and lock marker. The caller must hold the
// lock.
func (q *TypedQueue) Remove(id string) error {
	return q.removeLocked(id)
}

// Dequeue locks, reads, and removes id in one call.
func (q *TypedQueue) Dequeue(id string, permissive bool) (codec.Record, error) {
	ok, err := q.Lock(id, permissive)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLockHeld, id)
	}
	record, err := q.Get(id)
	if err != nil {
		return nil, err
	}
	if err := q.Remove(id); err != nil {
		return nil, err
	}
	return record, nil
}

// Peek locks, reads, and unlocks id, leaving it available afterward.
func (q *TypedQueue) Peek(id string, permissive bool) (codec.Record, error) {
	ok, err := q.Lock(id, permissive)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLockHeld, id)
	}
	record, err := q.Get(id)
	if err != nil {
		_, _ = q.Unlock(id, true)
		return nil, err
	}
	if _, err := q.Unlock(id, false); err != nil {
		return nil, err
	}
	return record, nil
}

// isVisible reports whether name in bucket is a committed element with no
// live lock marker. Shared by Count and Next so a full first()/next()
// traversal always yields exactly Count() identifiers.
func (q *TypedQueue) isVisible(bucket, name string) bool {
	if !ident.IsElementName(name) {
		return false
	}
	_, err := os.Stat(q.lockPath(joinID(bucket, name)))
	return errors.Is(err, fs.ErrNotExist)
}

// Count returns the number of visible (unlocked, present) elements.
func (q *TypedQueue) Count() (int, error) {
	return q.count(q.isVisible)
}

// First resets iteration to the start of the current bucket snapshot.
func (q *TypedQueue) First() error {
	return q.first()
}

// Next yields the next visible element identifier, or ("", false, nil)
// when iteration is exhausted.
func (q *TypedQueue) Next() (string, bool, error) {
	return q.next(q.isVisible)
}

// Purge reclaims stale staging entries and lock markers. An element whose
// stale lock is reclaimed stays in the queue and can be locked again.
func (q *TypedQueue) Purge(maxTemp, maxLock time.Duration) error {
	_, _, err := q.purge(maxTemp, maxLock, nil)
	return err
}

// StartPurgeTicker runs Purge(maxTemp, maxLock) every interval in the
// background until the returned stop function is called.
func (q *TypedQueue) StartPurgeTicker(interval, maxTemp, maxLock time.Duration) func() {
	return q.startTicker(interval, func() { _ = q.Purge(maxTemp, maxLock) })
}

// Clone returns a new handle sharing this queue's root, schema, and
// umask, but with its own iteration cursor: cursor state is per-consumer,
// not per-queue.
func (q *TypedQueue) Clone() *TypedQueue {
	return &TypedQueue{base: q.base.clone(), schema: q.schema, compressBinary: q.compressBinary}
}

// GetAny satisfies the common Queue interface used by Set.
func (q *TypedQueue) GetAny(id string) (any, error) {
	return q.Get(id)
}

func writeFileAtomic(path string, content []byte, perm os.FileMode, umask *int) error {
	tmp := path + ".tmp"
	f, err := fsutil.ExclusiveCreateFile(tmp, perm, umask)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		_ = fsutil.RemoveIfExists(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = fsutil.RemoveIfExists(tmp)
		return err
	}
	return fsutil.AtomicRename(tmp, path)
}
