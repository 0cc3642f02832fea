// Package fs provides the filesystem seam the issue store writes through.
//
// Two implementations are provided:
//   - [Real]: production use, wraps the [os] package and performs atomic
//     temp-file+rename writes
//   - [Injected]: testing use, fails selected operations on demand so
//     IO-failure guarantees can be exercised without a real full disk
package fs

import "os"

// FS defines the filesystem operations the issue store needs. All methods
// mirror their [os] package equivalents; WriteFileAtomic is the one
// store-specific addition.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to path so that a concurrent reader
	// observes either the old content or the new content, never a mix.
	// The data is written to a uniquely-named temp file in the same
	// directory, synced to disk, and renamed onto path. On failure before
	// the rename the temp file is removed and path is left untouched.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries sorted by name.
	// See [os.ReadDir].
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	// No error if the directory already exists, so concurrent creation
	// from multiple processes is safe.
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error
}
