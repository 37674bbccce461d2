//go:build unix || linux || darwin || freebsd || openbsd || netbsd

package fsutil

import (
	"errors"
	"os"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// umaskMu serializes umask swaps: the process umask is global, so two
// goroutines applying different umasks concurrently must not interleave.
var umaskMu sync.Mutex

// applyUmask sets the process umask to *umask for the duration of a single
// creation syscall, returning a function that restores the prior value.
// It is a no-op (returning a no-op restore) when umask is nil.
func applyUmask(umask *int) func() {
	if umask == nil {
		return func() {}
	}
	umaskMu.Lock()
	prev := unix.Umask(*umask)
	return func() {
		unix.Umask(prev)
		umaskMu.Unlock()
	}
}

func isNotEmpty(err error) bool {
	var perr *os.PathError
	if errors.As(err, &perr) {
		return errors.Is(perr.Err, syscall.ENOTEMPTY)
	}
	return false
}
