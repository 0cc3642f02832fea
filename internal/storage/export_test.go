package storage

import "time"

// Test-only exports for internals that have no public surface.

//nolint:gochecknoglobals // test seam
var (
	WithLock    = withLock
	AcquireLock = acquireLock
)

type FileLock = fileLock

// Release drops the lock. Test-visible name for release.
func (l *fileLock) Release() { l.release() }

// LockPath returns the sidecar lock path a store over dir uses for id.
func LockPath(dir, id string) string {
	return paths{dir: dir}.lock(id)
}

// IssuePath returns the canonical record path a store over dir uses for id.
func IssuePath(dir, id string) string {
	return paths{dir: dir}.issue(id)
}

// BackupPath returns the deletion backup path for id at time at.
func BackupPath(dir, id string, at time.Time) string {
	return paths{dir: dir}.backup(id, at)
}
