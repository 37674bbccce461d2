// Package dirq implements a persistent, multi-producer/multi-consumer
// queue that uses a hierarchical directory layout on a POSIX-like
// filesystem as its sole storage and coordination substrate. Atomicity
// and mutual exclusion come entirely from filesystem primitives: atomic
// rename, O_EXCL creation, and mkdir used as a lock.
//
// Three flavors share one engine: OpenTyped stores schema-validated
// multi-field records, OpenSimple stores a single opaque payload per
// element, and OpenNull discards everything and reports empty, useful
// for dry runs. NewSet federates several queues into one round-robin
// iteration.
package dirq
