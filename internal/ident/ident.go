// Package ident generates the fixed-width hex names a directory queue uses
// for buckets, elements, and staging files.
package ident

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"sync/atomic"
	"time"
)

// bucketPattern matches a valid bucket directory name: 8 lowercase hex digits.
var bucketPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

// elementPattern matches a valid element name: 14 lowercase hex digits.
var elementPattern = regexp.MustCompile(`^[0-9a-f]{14}$`)

// IsBucketName reports whether name is a well-formed bucket directory name.
func IsBucketName(name string) bool {
	return bucketPattern.MatchString(name)
}

// IsElementName reports whether name is a well-formed element name.
func IsElementName(name string) bool {
	return elementPattern.MatchString(name)
}

// Counter is a per-queue monotonically increasing counter used to keep
// element names strictly increasing for a single producer, even when a
// queue handle is shared across goroutines.
type Counter struct {
	n atomic.Uint64
}

// Next returns the next counter value, wrapped to a byte (mod 256).
func (c *Counter) Next() byte {
	return byte(c.n.Add(1))
}

// DeriveRandHex deterministically derives a rndhex value in [0,15] from a
// process identity, used when the caller does not supply one explicitly.
func DeriveRandHex(pid int) int {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d", pid)
	return int(h.Sum32() & 0xf)
}

// NewBucketName returns the 8-hex-digit bucket name covering the window
// containing now, given a granularity (bucket width) in seconds.
func NewBucketName(now time.Time, granularity time.Duration) string {
	if granularity <= 0 {
		granularity = time.Minute
	}
	secs := now.Unix()
	width := int64(granularity / time.Second)
	if width <= 0 {
		width = 1
	}
	bucket := (secs / width) & 0xffffffff
	return fmt.Sprintf("%08x", uint32(bucket))
}

// NewElementName returns a 14-hex-digit element name: 8 low-time hex
// digits (low 32 bits of the Unix second), 2 counter hex digits, 2 pid hex
// digits, and 2 hex digits carrying rndhex. Seconds, not nanoseconds, back
// the time component so that a single producer's names stay strictly
// increasing within one bucket: the counter distinguishes names created in
// the same second, and its byte range gives 256 counter values per second
// before it wraps (a queue draws two per add, one for the staging name and
// one for the element name).
func NewElementName(now time.Time, counter byte, pid int, rndhex int) string {
	if rndhex < 0 {
		rndhex = 0
	}
	if rndhex > 15 {
		rndhex = 15
	}
	lowTime := uint32(now.Unix())
	return fmt.Sprintf("%08x%02x%02x%02x", lowTime, counter, byte(pid), byte(rndhex))
}

// NewTemporaryName returns a name for a staging file under temporary/,
// guaranteed distinct from any possible element name by construction
// (temporary names contain a '.' separator, which no element name has).
func NewTemporaryName(now time.Time, counter byte, pid int) string {
	return fmt.Sprintf("%013x.%02x", now.UnixNano(), counter^byte(pid))
}
