package dirq

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewBaseRejectsEmptyRoot(t *testing.T) {
	_, err := NewSimpleQueue(Config{})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestNewBaseCreatesStructure(t *testing.T) {
	root := t.TempDir()
	_, err := NewSimpleQueue(Config{Root: root})
	assertNoError(t, err)

	for _, dir := range []string{"temporary", "obsolete"} {
		info, err := os.Stat(filepath.Join(root, dir))
		assertNoError(t, err)
		if !info.IsDir() {
			t.Fatalf("expected %s to be a directory", dir)
		}
	}
}

func TestPermissiveLockOnMissingBucket(t *testing.T) {
	q := setupSimpleQueue(t)
	ok, err := q.Lock("00000000/00000000000000", true)
	assertNoError(t, err)
	if ok {
		t.Fatalf("expected lock on nonexistent element to report false")
	}
}

func TestStrictLockOnMissingElementErrors(t *testing.T) {
	q := setupSimpleQueue(t)
	_, err := q.Lock("00000000/00000000000000", false)
	if !errors.Is(err, ErrMissingElement) {
		t.Fatalf("expected ErrMissingElement, got %v", err)
	}
}

func TestPermissiveUnlockOnMissingMarker(t *testing.T) {
	q := setupSimpleQueue(t)
	id, err := q.Add([]byte("x"))
	assertNoError(t, err)

	ok, err := q.Unlock(id, true)
	assertNoError(t, err)
	if ok {
		t.Fatalf("expected unlock of an unlocked element to report false")
	}
}

func TestFilesystemErrorUnwraps(t *testing.T) {
	err := fsErr("mkdir", "/nonexistent-parent/x", os.ErrPermission)
	var fsErrType *FilesystemError
	if !errors.As(err, &fsErrType) {
		t.Fatalf("expected *FilesystemError, got %T", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected Unwrap to expose the underlying error")
	}
}

func TestTouchUpdatesMtime(t *testing.T) {
	q := setupSimpleQueue(t)
	id, err := q.Add([]byte("x"))
	assertNoError(t, err)

	ok, err := q.Lock(id, false)
	assertNoError(t, err)
	if !ok {
		t.Fatalf("expected lock")
	}
	old := time.Now().Add(-time.Hour)
	assertNoError(t, os.Chtimes(q.lockPath(id), old, old))
	assertNoError(t, q.Touch(id))
	info, err := os.Stat(q.lockPath(id))
	assertNoError(t, err)
	if !info.ModTime().After(old) {
		t.Fatalf("expected Touch to move the lock marker mtime past %v, got %v", old, info.ModTime())
	}
}

func TestTouchMissingElementErrors(t *testing.T) {
	q := setupSimpleQueue(t)
	err := q.Touch("00000000/00000000000000")
	if !errors.Is(err, ErrMissingElement) {
		t.Fatalf("expected ErrMissingElement, got %v", err)
	}
}

func TestPurgeTickerReclaimsInBackground(t *testing.T) {
	q := setupSimpleQueue(t)
	id, err := q.Add([]byte("x"))
	assertNoError(t, err)
	ok, err := q.Lock(id, false)
	assertNoError(t, err)
	if !ok {
		t.Fatalf("expected lock")
	}

	stop := q.StartPurgeTicker(10*time.Millisecond, 0, 0)
	defer stop()

	waitFor(t, 2*time.Second, func() bool {
		relocked, err := q.Lock(id, false)
		if err != nil || !relocked {
			return false
		}
		return true
	})
}
