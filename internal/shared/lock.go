package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gofrs/flock"
)

var unsafeLockChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DestinationLock serializes syncs that write to the same destination collection across processes.
type DestinationLock struct {
	path string
	lock *flock.Flock
}

// NewDestinationLock creates a lock file path for backend/collection under dir (the OS temp dir when empty).
func NewDestinationLock(dir, backend, collection string) *DestinationLock {
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("syncx-%s-%s.lock", backend, unsafeLockChars.ReplaceAllString(collection, "_"))
	path := filepath.Join(dir, name)
	return &DestinationLock{path: path, lock: flock.New(path)}
}

// Path returns the lock file location.
func (l *DestinationLock) Path() string { return l.path }

// Acquire takes the lock without blocking. It returns [ErrDestinationLocked] when another process holds it.
func (l *DestinationLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDestinationLocked, l.path)
	}
	return nil
}

// Release unlocks the lock file. Releasing an unheld lock is a no-op.
func (l *DestinationLock) Release() error {
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
