// Package dirq implements the lock-based directory queue engine shared by
// the typed, simple, and null flavors, plus the queue-set federation.
package dirq

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pavelsr/dirq/internal/fsutil"
	"github.com/pavelsr/dirq/internal/ident"
	"github.com/pavelsr/dirq/internal/logging"
)

const (
	temporaryDirName = "temporary"
	obsoleteDirName  = "obsolete"
	lockSuffix       = ".lck"
)

// Sentinel errors surfaced at the boundary, matching the taxonomy carried
// by the root package's exported error variables.
var (
	ErrInvalidConfiguration = errors.New("dirq: invalid configuration")
	ErrNameCollision        = errors.New("dirq: name collision")
	ErrMissingElement       = errors.New("dirq: missing element")
	ErrLockHeld             = errors.New("dirq: lock held")
)

// FilesystemError wraps an unexpected syscall failure with path/operation
// context, letting callers errors.Is against the underlying error while
// still getting a path-qualified message.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("dirq: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

func fsErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &FilesystemError{Op: op, Path: path, Err: err}
}

// MetricsCollector receives counts for the base queue's lifecycle
// operations. Implementations must be safe for concurrent use.
type MetricsCollector interface {
	RecordAdd(payloadSize int, duration time.Duration)
	RecordAddError()
	RecordLock(acquired bool)
	RecordUnlock()
	RecordRemove()
	RecordTouch()
	RecordPurge(locksReclaimed, tempReclaimed int, duration time.Duration)
}

// NoopMetrics discards every observation.
type NoopMetrics struct{}

func (NoopMetrics) RecordAdd(int, time.Duration)  {}
func (NoopMetrics) RecordAddError()               {}
func (NoopMetrics) RecordLock(bool)               {}
func (NoopMetrics) RecordUnlock()                 {}
func (NoopMetrics) RecordRemove()                 {}
func (NoopMetrics) RecordTouch()                  {}
func (NoopMetrics) RecordPurge(int, int, time.Duration) {}

// Config holds the construction parameters shared by every flavor.
type Config struct {
	Root        string
	Umask       *int
	Granularity time.Duration
	RndHex      int
	MaxRetries  int
	Logger      logging.Logger
	Metrics     MetricsCollector
	DirPerm     os.FileMode
	FilePerm    os.FileMode
}

// base implements the engine operations common to every flavor: staging,
// committing, locking, touching, removing, counting, iterating, and
// purging. Flavors differ only in how a payload is written into and read
// out of an element path, so base exposes the path plumbing and leaves
// payload I/O to the embedding flavor.
type base struct {
	root        string
	umask       *int
	granularity time.Duration
	rndhex      int
	maxRetries  int
	dirPerm     os.FileMode
	filePerm    os.FileMode
	logger      logging.Logger
	metrics     MetricsCollector

	pid int
	// counter is a pointer so that Clone() can share it: spec requires a
	// per-process monotonic counter shared across handles in one process.
	counter *ident.Counter

	cursorMu sync.Mutex
	cursor   *iterationCursor
}

// clone returns a new base sharing root/umask/counter/logger/metrics with
// b, but with its own, empty iteration cursor: cursor state is
// per-consumer, not per-queue.
func (b *base) clone() *base {
	return &base{
		root:        b.root,
		umask:       b.umask,
		granularity: b.granularity,
		rndhex:      b.rndhex,
		maxRetries:  b.maxRetries,
		dirPerm:     b.dirPerm,
		filePerm:    b.filePerm,
		logger:      b.logger,
		metrics:     b.metrics,
		pid:         b.pid,
		counter:     b.counter,
	}
}

type iterationCursor struct {
	buckets    []string
	bucketIdx  int
	elements   []string
	elementIdx int
}

func newBase(cfg Config) (*base, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("%w: root path is required", ErrInvalidConfiguration)
	}
	if cfg.Granularity <= 0 {
		cfg.Granularity = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}
	if cfg.DirPerm == 0 {
		cfg.DirPerm = 0o755
	}
	if cfg.FilePerm == 0 {
		cfg.FilePerm = 0o644
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NoopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NoopMetrics{}
	}

	pid := os.Getpid()
	rndhex := cfg.RndHex
	if rndhex == 0 {
		rndhex = ident.DeriveRandHex(pid)
	}

	b := &base{
		root:        cfg.Root,
		umask:       cfg.Umask,
		granularity: cfg.Granularity,
		rndhex:      rndhex,
		maxRetries:  cfg.MaxRetries,
		dirPerm:     cfg.DirPerm,
		filePerm:    cfg.FilePerm,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		pid:         pid,
		counter:     &ident.Counter{},
	}

	for _, dir := range []string{b.root, b.temporaryDir(), b.obsoleteDir()} {
		if err := fsutil.EnsureDir(dir, b.dirPerm, b.umask); err != nil {
			return nil, fsErr("mkdir", dir, err)
		}
	}
	return b, nil
}

func (b *base) temporaryDir() string { return filepath.Join(b.root, temporaryDirName) }
func (b *base) obsoleteDir() string  { return filepath.Join(b.root, obsoleteDirName) }

func (b *base) bucketDir(id string) string {
	bucket, _ := splitID(id)
	return filepath.Join(b.root, bucket)
}

func (b *base) elementPath(id string) string {
	bucket, element := splitID(id)
	return filepath.Join(b.root, bucket, element)
}

func (b *base) lockPath(id string) string {
	return b.elementPath(id) + lockSuffix
}

func splitID(id string) (bucket, element string) {
	bucket, element = filepath.Split(id)
	return filepath.Clean(bucket), element
}

func joinID(bucket, element string) string {
	return bucket + "/" + element
}

// stage allocates a fresh path under temporary/ and hands it to write,
// which must create either a regular file or a directory at that exact
// path. The staged path is returned for commit.
func (b *base) stage(write func(stagingPath string) error) (string, error) {
	now := time.Now()
	name := ident.NewTemporaryName(now, b.counter.Next(), b.pid)
	staging := filepath.Join(b.temporaryDir(), name)
	if err := write(staging); err != nil {
		_ = fsutil.RemoveAllIfExists(staging)
		return "", err
	}
	return staging, nil
}

// commit renames a staged path into a bucket, retrying with a fresh
// element name on name collision up to maxRetries times.
func (b *base) commit(stagingPath string) (string, error) {
	now := time.Now()
	bucket := ident.NewBucketName(now, b.granularity)
	bucketDir := filepath.Join(b.root, bucket)
	if err := fsutil.MkdirIgnoreExist(bucketDir, b.dirPerm, b.umask); err != nil {
		_ = fsutil.RemoveAllIfExists(stagingPath)
		return "", fsErr("mkdir", bucketDir, err)
	}

	var lastErr error
	for attempt := 0; attempt < b.maxRetries; attempt++ {
		element := ident.NewElementName(now, b.counter.Next(), b.pid, b.rndhex)
		target := filepath.Join(bucketDir, element)
		err := fsutil.AtomicRename(stagingPath, target)
		if err == nil {
			id := joinID(bucket, element)
			b.logger.Debug("committed element", logging.F("id", id))
			return id, nil
		}
		if errors.Is(err, fs.ErrExist) {
			lastErr = err
			continue
		}
		_ = fsutil.RemoveAllIfExists(stagingPath)
		return "", fsErr("rename", target, err)
	}
	_ = fsutil.RemoveAllIfExists(stagingPath)
	return "", fmt.Errorf("%w: exhausted %d retries: %v", ErrNameCollision, b.maxRetries, lastErr)
}

// lockViaMkdir attempts exclusive acquisition of id's lock marker via
// mkdir, which is atomic and fails with fs.ErrExist on contention. Used by
// the typed flavor, whose element is itself a directory: the marker
// mirrors the element's own on-disk shape.
func (b *base) lockViaMkdir(id string, permissive bool) (bool, error) {
	lockPath := b.lockPath(id)
	err := fsutil.ExclusiveMkdir(lockPath, b.dirPerm, b.umask)
	if err == nil {
		// The bucket can outlive the element: a marker made beside a
		// removed element is taken down again and the lock is not granted.
		if _, statErr := os.Lstat(b.elementPath(id)); errors.Is(statErr, fs.ErrNotExist) {
			_ = fsutil.RemoveIfExists(lockPath)
			if permissive {
				b.metrics.RecordLock(false)
				return false, nil
			}
			return false, fmt.Errorf("%w: %s", ErrMissingElement, id)
		}
		b.metrics.RecordLock(true)
		return true, nil
	}
	if errors.Is(err, fs.ErrExist) {
		b.metrics.RecordLock(false)
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		// The bucket directory itself is gone: the element cannot exist.
		if permissive {
			b.metrics.RecordLock(false)
			return false, nil
		}
		return false, fmt.Errorf("%w: %s", ErrMissingElement, id)
	}
	return false, fsErr("mkdir", lockPath, err)
}

// lockViaHardLink attempts exclusive acquisition of id's lock marker by
// hard-linking it to the element's payload file. Used by the simple
// flavor, whose element is a plain file: linking is single-syscall
// atomic and fails with fs.ErrExist on contention, exactly like the
// mkdir marker, but leaves a file rather than a directory on disk.
func (b *base) lockViaHardLink(id string, permissive bool) (bool, error) {
	lockPath := b.lockPath(id)
	err := fsutil.HardLink(b.elementPath(id), lockPath)
	if err == nil {
		b.metrics.RecordLock(true)
		return true, nil
	}
	if errors.Is(err, fs.ErrExist) {
		b.metrics.RecordLock(false)
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		// The payload file itself is gone: the element cannot exist.
		if permissive {
			b.metrics.RecordLock(false)
			return false, nil
		}
		return false, fmt.Errorf("%w: %s", ErrMissingElement, id)
	}
	return false, fsErr("link", lockPath, err)
}

// unlock removes id's lock marker.
func (b *base) unlock(id string, permissive bool) (bool, error) {
	lockPath := b.lockPath(id)
	err := os.Remove(lockPath)
	if err == nil {
		b.metrics.RecordUnlock()
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		if permissive {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s", ErrMissingElement, id)
	}
	return false, fsErr("rmdir", lockPath, err)
}

// touch bumps id's lock marker mtime to now, signalling a live heartbeat
// to purge.
func (b *base) touch(id string) error {
	lockPath := b.lockPath(id)
	if err := fsutil.Touch(lockPath, time.Now()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingElement, id)
		}
		return fsErr("chtimes", lockPath, err)
	}
	b.metrics.RecordTouch()
	return nil
}

// removePayload deletes id's payload, tolerating a payload that is
// already gone.
func (b *base) removePayload(id string) error {
	path := b.elementPath(id)
	if err := fsutil.RemoveAllIfExists(path); err != nil {
		return fsErr("remove", path, err)
	}
	b.metrics.RecordRemove()
	return nil
}

// removeLocked deletes the payload and then the lock marker, in that
// order: a crash between the two steps leaves only a dangling lock
// marker, which purge reclaims.
func (b *base) removeLocked(id string) error {
	if err := b.removePayload(id); err != nil {
		return err
	}
	_, err := b.unlock(id, true)
	return err
}

// count returns the number of visible elements by listing every bucket.
// It tolerates concurrent mutation: whatever it observes at listing time
// is what it counts, with no retry.
func (b *base) count(isVisible func(bucket, name string) bool) (int, error) {
	buckets, err := fsutil.ListDir(b.root)
	if err != nil {
		return 0, fsErr("readdir", b.root, err)
	}
	total := 0
	for _, bucket := range buckets {
		if !ident.IsBucketName(bucket) {
			continue
		}
		names, err := fsutil.ListDir(filepath.Join(b.root, bucket))
		if err != nil {
			return 0, fsErr("readdir", filepath.Join(b.root, bucket), err)
		}
		for _, name := range names {
			if isVisible(bucket, name) {
				total++
			}
		}
	}
	return total, nil
}

// first snapshots the current bucket list, ascending, and resets
// per-bucket listing state, ready for a subsequent sequence of next calls.
func (b *base) first() error {
	buckets, err := fsutil.ListDir(b.root)
	if err != nil {
		return fsErr("readdir", b.root, err)
	}
	filtered := make([]string, 0, len(buckets))
	for _, bk := range buckets {
		if ident.IsBucketName(bk) {
			filtered = append(filtered, bk)
		}
	}

	b.cursorMu.Lock()
	defer b.cursorMu.Unlock()
	b.cursor = &iterationCursor{buckets: filtered}
	return nil
}

// next yields the next visible element identifier across buckets, or
// ("", false, nil) when iteration is exhausted. isVisible takes both the
// bucket and the candidate name so a flavor can apply the same
// lock-aware check next uses as count, keeping the two in agreement: a
// full first()/next() traversal yields exactly count() identifiers.
func (b *base) next(isVisible func(bucket, name string) bool) (string, bool, error) {
	b.cursorMu.Lock()
	defer b.cursorMu.Unlock()

	if b.cursor == nil {
		return "", false, fmt.Errorf("dirq: next called before first")
	}
	for {
		if b.cursor.elementIdx >= len(b.cursor.elements) {
			if b.cursor.bucketIdx >= len(b.cursor.buckets) {
				return "", false, nil
			}
			bucket := b.cursor.buckets[b.cursor.bucketIdx]
			b.cursor.bucketIdx++
			names, err := fsutil.ListDir(filepath.Join(b.root, bucket))
			if err != nil {
				return "", false, fsErr("readdir", filepath.Join(b.root, bucket), err)
			}
			b.cursor.elements = names
			b.cursor.elementIdx = 0
			continue
		}
		bucket := b.cursor.buckets[b.cursor.bucketIdx-1]
		name := b.cursor.elements[b.cursor.elementIdx]
		b.cursor.elementIdx++
		if !isVisible(bucket, name) {
			continue
		}
		return joinID(bucket, name), true, nil
	}
}

// purge reclaims stale staging files and lock markers. It is safe to run
// concurrently with add/lock/remove: it only ever removes things it finds
// to be older than the caller's thresholds, and the obsolete/ quarantine
// step keeps a concurrent, legitimate unlock from racing against removal.
func (b *base) purge(maxTemp, maxLock time.Duration, removePayload func(id string)) (tempReclaimed, locksReclaimed int, err error) {
	start := time.Now()
	defer func() {
		b.metrics.RecordPurge(locksReclaimed, tempReclaimed, time.Since(start))
	}()

	tempReclaimed, err = b.purgeTemporary(maxTemp)
	if err != nil {
		return tempReclaimed, 0, err
	}

	locksReclaimed, err = b.purgeLocks(maxLock, removePayload)
	if err != nil {
		return tempReclaimed, locksReclaimed, err
	}

	if err := b.purgeObsolete(maxLock); err != nil {
		return tempReclaimed, locksReclaimed, err
	}

	if err := b.purgeEmptyBuckets(); err != nil {
		return tempReclaimed, locksReclaimed, err
	}
	return tempReclaimed, locksReclaimed, nil
}

func (b *base) purgeTemporary(maxTemp time.Duration) (int, error) {
	dir := b.temporaryDir()
	names, err := fsutil.ListDir(dir)
	if err != nil {
		return 0, fsErr("readdir", dir, err)
	}
	cutoff := time.Now().Add(-maxTemp)
	reclaimed := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		older, err := fsutil.Older(path, cutoff)
		if err != nil {
			return reclaimed, fsErr("lstat", path, err)
		}
		if !older {
			continue
		}
		if err := fsutil.RemoveAllIfExists(path); err != nil {
			return reclaimed, fsErr("remove", path, err)
		}
		reclaimed++
	}
	return reclaimed, nil
}

func (b *base) purgeLocks(maxLock time.Duration, removePayload func(id string)) (int, error) {
	buckets, err := fsutil.ListDir(b.root)
	if err != nil {
		return 0, fsErr("readdir", b.root, err)
	}
	cutoff := time.Now().Add(-maxLock)
	reclaimed := 0
	for _, bucket := range buckets {
		if !ident.IsBucketName(bucket) {
			continue
		}
		bucketDir := filepath.Join(b.root, bucket)
		names, err := fsutil.ListDir(bucketDir)
		if err != nil {
			return reclaimed, fsErr("readdir", bucketDir, err)
		}
		for _, name := range names {
			if len(name) <= len(lockSuffix) || name[len(name)-len(lockSuffix):] != lockSuffix {
				continue
			}
			lockPath := filepath.Join(bucketDir, name)
			older, err := fsutil.Older(lockPath, cutoff)
			if err != nil {
				return reclaimed, fsErr("lstat", lockPath, err)
			}
			if !older {
				continue
			}
			quarantined := filepath.Join(b.obsoleteDir(), fmt.Sprintf("%s-%s", bucket, name))
			if err := fsutil.AtomicRename(lockPath, quarantined); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue // a concurrent holder already removed it; benign
				}
				return reclaimed, fsErr("rename", lockPath, err)
			}
			if removePayload != nil {
				elementName := name[:len(name)-len(lockSuffix)]
				removePayload(joinID(bucket, elementName))
			}
			reclaimed++
		}
	}
	return reclaimed, nil
}

func (b *base) purgeObsolete(maxLock time.Duration) error {
	dir := b.obsoleteDir()
	names, err := fsutil.ListDir(dir)
	if err != nil {
		return fsErr("readdir", dir, err)
	}
	cutoff := time.Now().Add(-maxLock)
	for _, name := range names {
		path := filepath.Join(dir, name)
		older, err := fsutil.Older(path, cutoff)
		if err != nil {
			return fsErr("lstat", path, err)
		}
		if !older {
			continue
		}
		if err := fsutil.RemoveAllIfExists(path); err != nil {
			return fsErr("remove", path, err)
		}
	}
	return nil
}

// tickerState guards a single self-rescheduling background timer.
type tickerState struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// startTicker runs fn every interval via a self-rescheduling time.AfterFunc,
// the same pattern a long-running consumer uses to heartbeat purge in the
// background instead of calling Purge explicitly. The returned function
// stops the ticker; it is safe to call more than once.
func (b *base) startTicker(interval time.Duration, fn func()) func() {
	state := &tickerState{}
	var schedule func()
	schedule = func() {
		state.mu.Lock()
		defer state.mu.Unlock()
		if state.stopped {
			return
		}
		state.timer = time.AfterFunc(interval, func() {
			fn()
			schedule()
		})
	}
	schedule()
	return func() {
		state.mu.Lock()
		defer state.mu.Unlock()
		state.stopped = true
		if state.timer != nil {
			state.timer.Stop()
		}
	}
}

func (b *base) purgeEmptyBuckets() error {
	buckets, err := fsutil.ListDir(b.root)
	if err != nil {
		return fsErr("readdir", b.root, err)
	}
	for _, bucket := range buckets {
		if !ident.IsBucketName(bucket) {
			continue
		}
		if err := fsutil.RmdirIfEmpty(filepath.Join(b.root, bucket)); err != nil {
			return fsErr("rmdir", filepath.Join(b.root, bucket), err)
		}
	}
	return nil
}
