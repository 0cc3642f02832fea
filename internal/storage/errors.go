package storage

import "errors"

// Store errors. All are matched with [errors.Is]; operations wrap them with
// the offending id or path.
var (
	// ErrNotFound means the id has no corresponding live file.
	ErrNotFound = errors.New("issue not found")

	// ErrCorrupted means the file exists but fails decode. Distinct from
	// ErrNotFound so callers can offer quarantine or repair flows instead
	// of treating the record as absent.
	ErrCorrupted = errors.New("issue file is corrupted")

	// ErrDuplicateID means a caller-supplied id collides with a live record.
	ErrDuplicateID = errors.New("issue id already exists")

	// ErrLockTimeout means the per-record lock could not be acquired within
	// the bound. Callers should report and allow retry, not hang.
	ErrLockTimeout = errors.New("lock timeout")

	// ErrCrossDevice means the atomic rename crossed filesystems. The path
	// resolver guarantees temp and target share a directory, so this
	// indicates a broken setup (e.g. a mount point inside the issues
	// directory) and is not retryable.
	ErrCrossDevice = errors.New("atomic rename crossed filesystems")

	// ErrPositionOutOfRange means a positional lookup exceeded the live set.
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrBackupFailed means the pre-delete backup could not be written.
	// The delete is aborted; the record stays live.
	ErrBackupFailed = errors.New("backup before delete failed")

	errDirEmpty = errors.New("issues directory cannot be empty")
)
