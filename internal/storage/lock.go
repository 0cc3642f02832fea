package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultLockTimeout bounds lock acquisition. A crashed holder that never
// released its lock must not hang every later writer forever; failing with
// [ErrLockTimeout] is acceptable because the lock is advisory and guards a
// short critical section.
const DefaultLockTimeout = 5 * time.Second

const (
	lockRetryStart = time.Millisecond
	lockRetryMax   = 25 * time.Millisecond
)

// fileLock is a held sidecar lock.
type fileLock struct {
	path string
	file *os.File
}

// release drops the lock. Order matters: remove the lock file while still
// holding the lock, then unlock, then close.
func (l *fileLock) release() {
	if l.file == nil {
		return
	}

	_ = os.Remove(l.path)
	_ = unlockFile(l.file)
	_ = l.file.Close()
	l.file = nil
}

// withLock runs fn while holding an exclusive cross-process lock on path,
// releasing it unconditionally afterward. Locking is advisory: it serializes
// cooperating store instances, not arbitrary external processes.
func withLock(path string, timeout time.Duration, fn func() error) error {
	lock, err := acquireLock(path, timeout)
	if err != nil {
		return err
	}

	defer lock.release()

	return fn()
}

// acquireLock polls a non-blocking platform lock with exponential backoff
// until timeout. Polling rather than blocking in the kernel keeps the wait
// bounded on every platform.
func acquireLock(path string, timeout time.Duration) (*fileLock, error) {
	deadline := time.Now().Add(timeout)
	backoff := lockRetryStart

	for {
		mkdirErr := os.MkdirAll(filepath.Dir(path), dirPerms)
		if mkdirErr != nil {
			return nil, fmt.Errorf("creating locks dir: %w", mkdirErr)
		}

		file, openErr := os.OpenFile(path, os.O_CREATE|os.O_RDWR, filePerms) //nolint:gosec // path is store-derived
		if openErr != nil {
			return nil, fmt.Errorf("opening lock file: %w", openErr)
		}

		locked, lockErr := tryLockFile(file)
		if lockErr != nil {
			_ = file.Close()

			return nil, fmt.Errorf("locking %s: %w", path, lockErr)
		}

		if locked {
			// A previous holder may have removed and recreated the lock
			// file while we were polling; in that case our lock is on a
			// dead inode and guards nothing.
			current, curErr := lockFileCurrent(file, path)
			if curErr != nil {
				_ = unlockFile(file)
				_ = file.Close()

				return nil, fmt.Errorf("verifying lock file: %w", curErr)
			}

			if current {
				return &fileLock{path: path, file: file}, nil
			}

			_ = unlockFile(file)
			_ = file.Close()

			continue
		}

		_ = file.Close()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: %s (after %s)", ErrLockTimeout, path, timeout)
		}

		time.Sleep(min(backoff, remaining))

		if backoff < lockRetryMax {
			backoff = min(backoff*2, lockRetryMax)
		}
	}
}
