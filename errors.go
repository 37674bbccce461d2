package dirq

import (
	"github.com/pavelsr/dirq/internal/codec"
	idirq "github.com/pavelsr/dirq/internal/dirq"
)

// Sentinel errors returned by this package's operations. Callers should
// use errors.Is/errors.As rather than comparing messages.
var (
	// ErrInvalidConfiguration is returned when an Option, a schema string,
	// or a record fails validation before any filesystem change is made.
	ErrInvalidConfiguration = idirq.ErrInvalidConfiguration

	// ErrNameCollision is returned when committing a new element exhausts
	// its retry budget against repeated identifier collisions.
	ErrNameCollision = idirq.ErrNameCollision

	// ErrMissingElement is returned by an operation addressing an element
	// identifier that does not exist on disk.
	ErrMissingElement = idirq.ErrMissingElement

	// ErrLockHeld is returned by a typed queue's Dequeue and Peek when
	// their lock attempt does not acquire the element. Lock itself reports
	// an already-locked element as (false, nil), permissive or not.
	ErrLockHeld = idirq.ErrLockHeld

	// ErrMalformedEncoding is returned when decoding a record or a field
	// value whose on-disk bytes do not match the percent-escaped framing
	// produced by this package.
	ErrMalformedEncoding = codec.ErrMalformedEncoding
)

// FilesystemError wraps an unexpected syscall failure with the operation
// and path that triggered it. Unwrap exposes the underlying error, so
// errors.Is(err, os.ErrPermission) and similar checks work through it.
type FilesystemError = idirq.FilesystemError
