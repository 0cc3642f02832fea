//go:build unix

package storage

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// tryLockFile attempts a non-blocking exclusive flock(2) on f.
// Returns (false, nil) when another process holds the lock.
func tryLockFile(f *os.File) (bool, error) {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true, nil
	}

	// EINTR: interrupted by a signal before acquiring; the poll loop retries.
	if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
		return false, nil
	}

	return false, err
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

// lockFileCurrent reports whether f still refers to the file at path.
// flock binds to an inode, not a pathname: a waiter can win the lock on an
// inode that a finished holder already unlinked, while a third process
// recreates the path and locks the new inode. Comparing (dev, ino) after
// acquisition closes that window.
func lockFileCurrent(f *os.File, path string) (bool, error) {
	var fdStat unix.Stat_t

	fstatErr := unix.Fstat(int(f.Fd()), &fdStat)
	if fstatErr != nil {
		return false, fstatErr
	}

	var pathStat unix.Stat_t

	statErr := unix.Stat(path, &pathStat)
	if statErr != nil {
		if errors.Is(statErr, unix.ENOENT) {
			return false, nil
		}

		return false, statErr
	}

	return fdStat.Dev == pathStat.Dev && fdStat.Ino == pathStat.Ino, nil
}
