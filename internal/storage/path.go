package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	issueExt       = ".json"
	lockExt        = ".lock"
	locksDirName   = ".locks"
	backupsDirName = "backups"

	dirPerms  = 0o750
	filePerms = 0o600
)

// paths derives every on-disk location from the base directory and an issue
// id. All write-path siblings (temp files, handled inside the atomic writer)
// live in the same directory as the canonical file so rename stays atomic.
type paths struct {
	dir string
}

// issue returns the canonical record path: <dir>/<id>.json.
func (p paths) issue(id string) string {
	return filepath.Join(p.dir, id+issueExt)
}

// lock returns the sidecar lock path for an id. Lock files live in a .locks
// subdirectory so acquiring and releasing them does not touch the issues
// directory mtime.
func (p paths) lock(id string) string {
	return filepath.Join(p.dir, locksDirName, id+issueExt+lockExt)
}

// backup returns a deletion backup path namespaced by id and timestamp:
// <dir>/backups/<id>_<unix>.json.
func (p paths) backup(id string, at time.Time) string {
	return filepath.Join(p.backupsDir(), fmt.Sprintf("%s_%d%s", id, at.Unix(), issueExt))
}

func (p paths) backupsDir() string {
	return filepath.Join(p.dir, backupsDirName)
}

// idFromFilename maps a directory entry name back to an issue id.
// Returns ("", false) for anything that is not a record file: dot files,
// lock files, and the temp files the atomic writer names <base><random>.
func (p paths) idFromFilename(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, issueExt) {
		return "", false
	}

	id := strings.TrimSuffix(name, issueExt)
	if id == "" {
		return "", false
	}

	return id, true
}
