package dirq

import (
	idirq "github.com/pavelsr/dirq/internal/dirq"
)

// TypedQueue stores schema-validated multi-field records, one file per
// declared field, under an element directory. Open one with OpenTyped.
type TypedQueue struct {
	*idirq.TypedQueue
}

// OpenTyped opens or creates a typed queue rooted at path, validating
// every record written to it against schemaString. Pass WithCompression()
// to enable zstd compression of binary-kind field values.
func OpenTyped(path, schemaString string, opts ...Option) (*TypedQueue, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	cfg := buildConfigFromOptions(path, o)

	var typedOpts []idirq.TypedOption
	if o.Compress {
		typedOpts = append(typedOpts, idirq.WithBinaryCompression())
	}
	inner, err := idirq.NewTypedQueue(cfg, schemaString, typedOpts...)
	if err != nil {
		return nil, err
	}
	return &TypedQueue{inner}, nil
}

// Clone returns a new handle sharing this queue's root, schema, and
// umask, but with its own iteration cursor. Use one clone per consumer
// goroutine.
func (q *TypedQueue) Clone() *TypedQueue {
	return &TypedQueue{q.TypedQueue.Clone()}
}

// SimpleQueue stores a single opaque payload per element: one file, one
// rename per commit, no schema. Open one with OpenSimple.
type SimpleQueue struct {
	*idirq.SimpleQueue
}

// OpenSimple opens or creates a simple queue rooted at path. Pass
// WithCompression() to enable zstd compression of payloads.
func OpenSimple(path string, opts ...Option) (*SimpleQueue, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	cfg := buildConfigFromOptions(path, o)

	var simpleOpts []idirq.SimpleOption
	if o.Compress {
		simpleOpts = append(simpleOpts, idirq.WithCompression())
	}
	inner, err := idirq.NewSimpleQueue(cfg, simpleOpts...)
	if err != nil {
		return nil, err
	}
	return &SimpleQueue{inner}, nil
}

// Clone returns a new handle sharing this queue's root and umask, but
// with its own iteration cursor. Use one clone per consumer goroutine.
func (q *SimpleQueue) Clone() *SimpleQueue {
	return &SimpleQueue{q.SimpleQueue.Clone()}
}

// NullQueue satisfies the queue contract but discards every write and
// reports empty, letting callers configure a dry-run queue without
// conditional code paths.
type NullQueue struct {
	*idirq.NullQueue
}

// OpenNull returns a ready-to-use null queue. It requires no root
// directory and performs no filesystem I/O.
func OpenNull() *NullQueue {
	return &NullQueue{idirq.NewNullQueue()}
}

// Queue is the capability set shared by every flavor when used as a
// member of a Set: add is intentionally excluded, since a set's caller
// must choose a member queue to add to.
type Queue = idirq.Queue

// ElementRef identifies an element within a Set by which member queue it
// belongs to and its identifier within that queue.
type ElementRef = idirq.ElementRef

// Set is a round-robin federation over several queue instances, exposing
// unified iteration. TypedQueue, SimpleQueue, and NullQueue all satisfy
// Queue and can be added as members.
type Set = idirq.Set

// NewSet constructs a Set federating the given queues, in order.
func NewSet(queues ...Queue) *Set {
	return idirq.NewSet(queues...)
}
