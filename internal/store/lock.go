package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// LockTimeout is the timeout for acquiring a document lock.
const LockTimeout = 5 * time.Second

// Lock errors.
var (
	errLockTimeout  = errors.New("lock timeout")
	errLockFileOpen = errors.New("failed to open lock file")
)

// fileLock holds an exclusive flock on a .lock sidecar. Locking the sidecar
// instead of the document itself keeps atomic rename-based writes safe.
type fileLock struct {
	path string
	file *os.File
}

// acquireLockWithTimeout tries to acquire an exclusive lock on the sidecar for
// path, polling until the timeout expires.
func acquireLockWithTimeout(path string, timeout time.Duration) (*fileLock, error) {
	lockPath := path + ".lock"

	file, openErr := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerms) //nolint:gosec // path is from caller
	if openErr != nil {
		return nil, fmt.Errorf("%w: %w", errLockFileOpen, openErr)
	}

	deadline := time.Now().Add(timeout)

	const retryInterval = 10 * time.Millisecond

	for {
		flockErr := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if flockErr == nil {
			return &fileLock{path: lockPath, file: file}, nil
		}

		if time.Now().After(deadline) {
			_ = file.Close()

			return nil, fmt.Errorf("%w: %s", errLockTimeout, path)
		}

		time.Sleep(retryInterval)
	}
}

// release releases the lock.
func (l *fileLock) release() {
	if l.file != nil {
		_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
		_ = l.file.Close()
	}
}

// withLock runs fn while holding the exclusive lock for path. The lock is
// always released when withLock returns.
func withLock(path string, fn func() error) error {
	lock, lockErr := acquireLockWithTimeout(path, LockTimeout)
	if lockErr != nil {
		return fmt.Errorf("acquiring lock: %w", lockErr)
	}

	defer lock.release()

	return fn()
}
