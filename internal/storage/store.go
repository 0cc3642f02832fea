// Package storage persists issues as one JSON file per record inside a base
// directory, guaranteeing that concurrent readers and writers never observe
// partial or corrupted data.
//
// Writers serialize per record through an advisory cross-process lock and
// publish via atomic temp-file+rename writes. Readers never lock; the rename
// guarantees they see either the fully-old or fully-new document. The store
// is a synchronous library with no internal scheduler: the concurrency it
// defends against is multiple independent OS processes racing on the same
// directory.
package storage

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/calvinalkan/bugit/internal/fs"
	"github.com/calvinalkan/bugit/internal/issue"
)

// Store is the public API over one issues directory. It exclusively owns the
// directory: no other component writes record files there.
type Store struct {
	paths       paths
	fsys        fs.FS
	now         func() time.Time
	newID       func() string
	lockTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithFS substitutes the filesystem implementation. Used by tests to inject
// IO failures.
func WithFS(fsys fs.FS) Option {
	return func(s *Store) { s.fsys = fsys }
}

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc substitutes id generation.
func WithIDFunc(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLockTimeout bounds per-record lock acquisition.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Store) { s.lockTimeout = timeout }
}

// New opens a store over dir, creating the directory if absent. Creation is
// idempotent and safe to race from multiple processes.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errDirEmpty
	}

	store := &Store{
		paths:       paths{dir: dir},
		fsys:        fs.NewReal(),
		now:         time.Now,
		newID:       func() string { return ksuid.New().String() },
		lockTimeout: DefaultLockTimeout,
	}

	for _, opt := range opts {
		opt(store)
	}

	mkdirErr := store.fsys.MkdirAll(store.paths.dir, dirPerms)
	if mkdirErr != nil {
		return nil, fmt.Errorf("creating issues directory: %w", mkdirErr)
	}

	return store, nil
}

// Dir returns the base issues directory.
func (s *Store) Dir() string {
	return s.paths.dir
}

// Create persists fields as a new record. The store assigns the id (unless
// the caller supplied one), stamps created_at/updated_at, and writes
// atomically under the record lock. A caller-supplied id that collides with
// a live record fails with [ErrDuplicateID].
func (s *Store) Create(fields issue.Issue) (issue.Issue, error) {
	rec := fields
	if rec.ID == "" {
		rec.ID = s.newID()
	}

	rec.SchemaVersion = issue.SchemaVersion
	created := s.now()
	rec.CreatedAt = created
	rec.UpdatedAt = created

	path := s.paths.issue(rec.ID)

	lockErr := withLock(s.paths.lock(rec.ID), s.lockTimeout, func() error {
		exists, existsErr := s.fsys.Exists(path)
		if existsErr != nil {
			return fmt.Errorf("checking for existing issue: %w", existsErr)
		}

		if exists {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}

		return s.writeIssue(path, rec)
	})
	if lockErr != nil {
		return issue.Issue{}, lockErr
	}

	return rec, nil
}

// Read returns the live record for id. Returns [ErrNotFound] if the file is
// absent and [ErrCorrupted] if it is present but undecodable; the two are
// never conflated and a corrupt file is never turned into a default record.
// Read takes no lock: atomic rename guarantees it sees a complete document.
func (s *Store) Read(id string) (issue.Issue, error) {
	if id == "" {
		return issue.Issue{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	return s.readFile(id, s.paths.issue(id))
}

// Patch is a partial mutation applied by Update. Nil pointer fields are left
// unchanged; AddTags and RemoveTags adjust the tag set.
type Patch struct {
	Title       *string
	Description *string
	Severity    *issue.Severity
	Type        *string
	AddTags     []string
	RemoveTags  []string
}

// apply merges the patch onto rec, leaving store-managed fields alone.
func (p Patch) apply(rec issue.Issue) (issue.Issue, error) {
	if p.Title != nil {
		rec.Title = *p.Title
	}

	if p.Description != nil {
		rec.Description = *p.Description
	}

	if p.Severity != nil {
		if !p.Severity.Valid() {
			return issue.Issue{}, fmt.Errorf("%w: unknown severity %q", issue.ErrValidation, *p.Severity)
		}

		rec.Severity = *p.Severity
	}

	if p.Type != nil {
		if !issue.IsValidType(*p.Type) {
			return issue.Issue{}, fmt.Errorf("%w: unknown type %q", issue.ErrValidation, *p.Type)
		}

		rec.Type = *p.Type
	}

	tags := rec.Tags
	tags = append(tags[:len(tags):len(tags)], p.AddTags...)

	rec.Tags = tags

	for _, remove := range p.RemoveTags {
		rec.Tags = deleteTag(rec.Tags, remove)
	}

	normalized, err := issue.ValidateOrDefault(rec)
	if err != nil {
		return issue.Issue{}, err
	}

	return normalized, nil
}

func deleteTag(tags []string, tag string) []string {
	out := tags[:0]

	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}

	return out
}

// Update applies patch to the record under the per-record lock
// (read-modify-write). id and created_at are immutable; updated_at is
// refreshed and strictly increases across sequential updates. Concurrent
// updates to the same id serialize on the lock and the last writer wins;
// there is no version check in this store.
func (s *Store) Update(id string, patch Patch) (issue.Issue, error) {
	if id == "" {
		return issue.Issue{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	path := s.paths.issue(id)

	var updated issue.Issue

	lockErr := withLock(s.paths.lock(id), s.lockTimeout, func() error {
		rec, readErr := s.readFile(id, path)
		if readErr != nil {
			return readErr
		}

		next, applyErr := patch.apply(rec)
		if applyErr != nil {
			return applyErr
		}

		next.ID = rec.ID
		next.CreatedAt = rec.CreatedAt
		next.Extra = rec.Extra

		stamp := s.now()
		if !stamp.After(rec.UpdatedAt) {
			// Clock granularity or a stopped test clock; keep updated_at
			// strictly increasing anyway.
			stamp = rec.UpdatedAt.Add(time.Nanosecond)
		}

		next.UpdatedAt = stamp

		writeErr := s.writeIssue(path, next)
		if writeErr != nil {
			return writeErr
		}

		updated = next

		return nil
	})
	if lockErr != nil {
		return issue.Issue{}, lockErr
	}

	return updated, nil
}

// Delete removes the record under the per-record lock. With withBackup set,
// the current content is first copied to a timestamped file under backups/;
// a backup failure aborts the delete with [ErrBackupFailed] rather than
// silently discarding the last copy of the record. Deleting an absent id
// fails with [ErrNotFound] and has no side effects, on the first call and
// on every repeat.
func (s *Store) Delete(id string, withBackup bool) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrNotFound)
	}

	path := s.paths.issue(id)

	return withLock(s.paths.lock(id), s.lockTimeout, func() error {
		exists, existsErr := s.fsys.Exists(path)
		if existsErr != nil {
			return fmt.Errorf("checking issue %s: %w", id, existsErr)
		}

		if !exists {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		if withBackup {
			backupErr := s.backup(id, path)
			if backupErr != nil {
				return fmt.Errorf("%w: %s: %w", ErrBackupFailed, id, backupErr)
			}
		}

		removeErr := s.fsys.Remove(path)
		if removeErr != nil {
			if os.IsNotExist(removeErr) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}

			return fmt.Errorf("deleting issue %s: %w", id, removeErr)
		}

		return nil
	})
}

// backup copies the record's current bytes to a timestamped backup path.
// The copy is written atomically so a crashed delete never leaves a torn
// backup.
func (s *Store) backup(id, path string) error {
	data, readErr := s.fsys.ReadFile(path)
	if readErr != nil {
		return fmt.Errorf("reading issue for backup: %w", readErr)
	}

	mkdirErr := s.fsys.MkdirAll(s.paths.backupsDir(), dirPerms)
	if mkdirErr != nil {
		return fmt.Errorf("creating backups directory: %w", mkdirErr)
	}

	writeErr := s.fsys.WriteFileAtomic(s.paths.backup(id, s.now()), data, filePerms)
	if writeErr != nil {
		return fmt.Errorf("writing backup: %w", writeErr)
	}

	return nil
}

// CorruptFile describes one record file that failed decode during a listing.
type CorruptFile struct {
	ID   string
	Path string
	Err  error
}

// ListResult is the outcome of one List call: decodable records in index
// order plus a report of the files that failed. One corrupt record must not
// make every other record invisible, so corruption is reported alongside the
// healthy result instead of failing the listing.
type ListResult struct {
	Issues    []issue.Issue
	Corrupted []CorruptFile
}

// List enumerates the directory fresh on every call and decodes each record
// file. The result is sorted in index order (severity descending, then
// created_at descending, then id). Files that vanish mid-listing were
// deleted by a concurrent process and are skipped silently; files that fail
// decode are reported in Corrupted.
func (s *Store) List() (ListResult, error) {
	entries, readErr := s.fsys.ReadDir(s.paths.dir)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return ListResult{}, nil
		}

		return ListResult{}, fmt.Errorf("reading issues directory: %w", readErr)
	}

	var result ListResult

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		id, ok := s.paths.idFromFilename(entry.Name())
		if !ok {
			continue
		}

		path := s.paths.issue(id)

		rec, recErr := s.readFile(id, path)

		switch {
		case recErr == nil:
			result.Issues = append(result.Issues, rec)
		case isNotFound(recErr):
			// Deleted between ReadDir and ReadFile.
		default:
			result.Corrupted = append(result.Corrupted, CorruptFile{ID: id, Path: path, Err: recErr})
		}
	}

	sortIssues(result.Issues)

	return result, nil
}

// readFile reads and decodes one record file, mapping absence to ErrNotFound
// and decode failure to ErrCorrupted.
func (s *Store) readFile(id, path string) (issue.Issue, error) {
	data, readErr := s.fsys.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return issue.Issue{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return issue.Issue{}, fmt.Errorf("reading issue %s: %w", id, readErr)
	}

	rec, decodeErr := issue.Decode(data)
	if decodeErr != nil {
		return issue.Issue{}, fmt.Errorf("%w: %s: %w", ErrCorrupted, id, decodeErr)
	}

	// The filename is authoritative for the id; old documents may omit it.
	if rec.ID == "" {
		rec.ID = id
	}

	return rec, nil
}

// writeIssue encodes and atomically publishes rec at path.
func (s *Store) writeIssue(path string, rec issue.Issue) error {
	data, encodeErr := issue.Encode(rec)
	if encodeErr != nil {
		return fmt.Errorf("encoding issue %s: %w", rec.ID, encodeErr)
	}

	writeErr := s.fsys.WriteFileAtomic(path, data, filePerms)
	if writeErr != nil {
		if isCrossDevice(writeErr) {
			return fmt.Errorf("%w: %s", ErrCrossDevice, path)
		}

		return fmt.Errorf("writing issue %s: %w", rec.ID, writeErr)
	}

	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
