package storage_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/bugit/internal/fs"
	"github.com/calvinalkan/bugit/internal/issue"
	"github.com/calvinalkan/bugit/internal/storage"
)

var errInjected = errors.New("injected failure")

//nolint:gochecknoglobals // shared comparer for time fields
var timeComparer = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

func newStore(t *testing.T, opts ...storage.Option) *storage.Store {
	t.Helper()

	store, err := storage.New(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	return store
}

func mustCreate(t *testing.T, store *storage.Store, fields issue.Issue) issue.Issue {
	t.Helper()

	rec, err := store.Create(fields)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	return rec
}

func TestNew_EmptyDirRejected(t *testing.T) {
	t.Parallel()

	_, err := storage.New("")
	if err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestNew_CreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "issues")

	store, err := storage.New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if store.Dir() != dir {
		t.Errorf("Dir()=%q, want %q", store.Dir(), dir)
	}

	info, statErr := os.Stat(dir)
	if statErr != nil || !info.IsDir() {
		t.Fatalf("issues directory not created: %v", statErr)
	}
}

func TestCreate_AssignsIDAndTimestamps(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	store := newStore(t, storage.WithClock(func() time.Time { return now }))

	rec := mustCreate(t, store, issue.Issue{Title: "t", Severity: issue.SeverityLow, Type: issue.TypeBug})

	if rec.ID == "" {
		t.Fatal("Create did not assign an id")
	}

	if !rec.CreatedAt.Equal(now) || !rec.UpdatedAt.Equal(now) {
		t.Errorf("timestamps not stamped: created=%v updated=%v", rec.CreatedAt, rec.UpdatedAt)
	}

	got, readErr := store.Read(rec.ID)
	if readErr != nil {
		t.Fatalf("Read failed: %v", readErr)
	}

	if diff := cmp.Diff(rec, got, timeComparer); diff != "" {
		t.Errorf("read-back mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate_DistinctIDs(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	seen := map[string]bool{}

	for range 20 {
		rec := mustCreate(t, store, issue.Issue{Title: "t"})
		if seen[rec.ID] {
			t.Fatalf("duplicate id generated: %s", rec.ID)
		}

		seen[rec.ID] = true
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	mustCreate(t, store, issue.Issue{ID: "fixed", Title: "first"})

	_, err := store.Create(issue.Issue{ID: "fixed", Title: "second"})
	if !errors.Is(err, storage.ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}

	// First record must be untouched.
	rec, readErr := store.Read("fixed")
	if readErr != nil {
		t.Fatalf("Read failed: %v", readErr)
	}

	if rec.Title != "first" {
		t.Errorf("existing record overwritten: %q", rec.Title)
	}
}

func TestRead_NotFoundVsCorrupted(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	_, absentErr := store.Read("missing")
	if !errors.Is(absentErr, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", absentErr)
	}

	if errors.Is(absentErr, storage.ErrCorrupted) {
		t.Error("absent file must not report as corrupted")
	}

	writeErr := os.WriteFile(storage.IssuePath(store.Dir(), "bad"), []byte("{not json"), 0o600)
	if writeErr != nil {
		t.Fatalf("writing corrupt file: %v", writeErr)
	}

	_, corruptErr := store.Read("bad")
	if !errors.Is(corruptErr, storage.ErrCorrupted) {
		t.Errorf("expected ErrCorrupted, got %v", corruptErr)
	}

	if errors.Is(corruptErr, storage.ErrNotFound) {
		t.Error("corrupt file must not report as not found")
	}
}

func TestRead_EmptyID(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	_, err := store.Read("")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestUpdate_PreservesImmutableFields(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	rec := mustCreate(t, store, issue.Issue{Title: "before", Severity: issue.SeverityLow, Type: issue.TypeBug})

	title := "after"
	sev := issue.SeverityCritical

	updated, err := store.Update(rec.ID, storage.Patch{Title: &title, Severity: &sev})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.ID != rec.ID {
		t.Errorf("id changed on update: %q -> %q", rec.ID, updated.ID)
	}

	if !updated.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("created_at changed on update: %v -> %v", rec.CreatedAt, updated.CreatedAt)
	}

	if updated.Title != "after" || updated.Severity != issue.SeverityCritical {
		t.Errorf("patch not applied: %+v", updated)
	}
}

func TestUpdate_UpdatedAtStrictlyIncreases(t *testing.T) {
	t.Parallel()

	// A frozen clock is the worst case: the store must still advance
	// updated_at on every write.
	frozen := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	store := newStore(t, storage.WithClock(func() time.Time { return frozen }))

	rec := mustCreate(t, store, issue.Issue{Title: "t"})
	prev := rec.UpdatedAt

	title := "x"

	for range 3 {
		updated, err := store.Update(rec.ID, storage.Patch{Title: &title})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		if !updated.UpdatedAt.After(prev) {
			t.Fatalf("updated_at did not increase: %v -> %v", prev, updated.UpdatedAt)
		}

		prev = updated.UpdatedAt
	}
}

func TestUpdate_PreservesUnknownFields(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	rec := mustCreate(t, store, issue.Issue{Title: "t"})

	// Simulate another tool attaching a field this revision doesn't know.
	path := storage.IssuePath(store.Dir(), rec.ID)

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("reading record: %v", readErr)
	}

	patched := strings.Replace(string(data), "{", `{"external_ref": "JIRA-123",`, 1)

	writeErr := os.WriteFile(path, []byte(patched), 0o600)
	if writeErr != nil {
		t.Fatalf("writing record: %v", writeErr)
	}

	title := "renamed"

	updated, updateErr := store.Update(rec.ID, storage.Patch{Title: &title})
	if updateErr != nil {
		t.Fatalf("Update failed: %v", updateErr)
	}

	if string(updated.Extra["external_ref"]) != `"JIRA-123"` {
		t.Errorf("unknown field lost on update: %v", updated.Extra)
	}

	// And it must be back on disk after the rewrite.
	again, readAgainErr := store.Read(rec.ID)
	if readAgainErr != nil {
		t.Fatalf("Read failed: %v", readAgainErr)
	}

	if string(again.Extra["external_ref"]) != `"JIRA-123"` {
		t.Errorf("unknown field not persisted: %v", again.Extra)
	}
}

func TestUpdate_TagOperations(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	rec := mustCreate(t, store, issue.Issue{Title: "t", Tags: []string{"auth", "ui"}})

	updated, err := store.Update(rec.ID, storage.Patch{
		AddTags:    []string{"ios", "auth"},
		RemoveTags: []string{"ui"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if diff := cmp.Diff([]string{"auth", "ios"}, updated.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	title := "x"

	_, err := store.Update("missing", storage.Patch{Title: &title})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_InvalidSeverityRejected(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	rec := mustCreate(t, store, issue.Issue{Title: "t", Severity: issue.SeverityLow})

	bad := issue.Severity("catastrophic")

	_, err := store.Update(rec.ID, storage.Patch{Severity: &bad})
	if !errors.Is(err, issue.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	// Record unchanged.
	got, readErr := store.Read(rec.ID)
	if readErr != nil {
		t.Fatalf("Read failed: %v", readErr)
	}

	if got.Severity != issue.SeverityLow {
		t.Errorf("failed update mutated the record: %q", got.Severity)
	}
}

func TestDelete_WritesBackupFirst(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	store := newStore(t, storage.WithClock(func() time.Time { return now }))
	rec := mustCreate(t, store, issue.Issue{Title: "t"})

	original, readErr := os.ReadFile(storage.IssuePath(store.Dir(), rec.ID))
	if readErr != nil {
		t.Fatalf("reading record: %v", readErr)
	}

	deleteErr := store.Delete(rec.ID, true)
	if deleteErr != nil {
		t.Fatalf("Delete failed: %v", deleteErr)
	}

	if _, err := store.Read(rec.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("record still readable after delete: %v", err)
	}

	backup, backupErr := os.ReadFile(storage.BackupPath(store.Dir(), rec.ID, now))
	if backupErr != nil {
		t.Fatalf("backup not written: %v", backupErr)
	}

	if string(backup) != string(original) {
		t.Error("backup content differs from the deleted record")
	}
}

func TestDelete_WithoutBackup(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	rec := mustCreate(t, store, issue.Issue{Title: "t"})

	deleteErr := store.Delete(rec.ID, false)
	if deleteErr != nil {
		t.Fatalf("Delete failed: %v", deleteErr)
	}

	entries, readDirErr := os.ReadDir(filepath.Join(store.Dir(), "backups"))
	if readDirErr == nil && len(entries) > 0 {
		t.Errorf("backup written despite withBackup=false: %v", entries)
	}
}

func TestDelete_BackupFailureAbortsDelete(t *testing.T) {
	t.Parallel()

	injected := fs.NewInjected(fs.NewReal())
	store := newStore(t, storage.WithFS(injected))
	rec := mustCreate(t, store, issue.Issue{Title: "t"})

	injected.FailWriteFileAtomic(func(path string) error {
		if strings.Contains(path, "backups") {
			return errInjected
		}

		return nil
	})

	deleteErr := store.Delete(rec.ID, true)
	if !errors.Is(deleteErr, storage.ErrBackupFailed) {
		t.Fatalf("expected ErrBackupFailed, got %v", deleteErr)
	}

	// The record must survive an aborted delete.
	if _, err := store.Read(rec.ID); err != nil {
		t.Errorf("record lost after aborted delete: %v", err)
	}
}

func TestDelete_AbsentIDIdempotent(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	for range 2 {
		err := store.Delete("missing", true)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	}

	// No side effects: no backup dir, no stray files.
	entries, readDirErr := os.ReadDir(store.Dir())
	if readDirErr != nil {
		t.Fatalf("reading issues dir: %v", readDirErr)
	}

	for _, entry := range entries {
		if entry.Name() != ".locks" {
			t.Errorf("unexpected entry after failed delete: %s", entry.Name())
		}
	}
}

func TestList_IsolatesCorruptFiles(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	healthy := make(map[string]bool)
	for i := range 3 {
		rec := mustCreate(t, store, issue.Issue{Title: fmt.Sprintf("issue %d", i)})
		healthy[rec.ID] = true
	}

	writeErr := os.WriteFile(storage.IssuePath(store.Dir(), "garbage"), []byte("%%% not json"), 0o600)
	if writeErr != nil {
		t.Fatalf("writing corrupt file: %v", writeErr)
	}

	result, listErr := store.List()
	if listErr != nil {
		t.Fatalf("List failed: %v", listErr)
	}

	if len(result.Issues) != len(healthy) {
		t.Errorf("expected %d healthy issues, got %d", len(healthy), len(result.Issues))
	}

	for _, rec := range result.Issues {
		if !healthy[rec.ID] {
			t.Errorf("unexpected issue in listing: %s", rec.ID)
		}
	}

	if len(result.Corrupted) != 1 {
		t.Fatalf("expected 1 corrupt file, got %d", len(result.Corrupted))
	}

	if result.Corrupted[0].ID != "garbage" {
		t.Errorf("corrupt report names wrong file: %+v", result.Corrupted[0])
	}

	if !errors.Is(result.Corrupted[0].Err, storage.ErrCorrupted) {
		t.Errorf("corrupt report should wrap ErrCorrupted: %v", result.Corrupted[0].Err)
	}
}

func TestList_SkipsNonRecordFiles(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	rec := mustCreate(t, store, issue.Issue{Title: "t"})

	for _, name := range []string{".hidden.json", "notes.txt", "draft.json.tmp123"} {
		writeErr := os.WriteFile(filepath.Join(store.Dir(), name), []byte("x"), 0o600)
		if writeErr != nil {
			t.Fatalf("writing %s: %v", name, writeErr)
		}
	}

	result, listErr := store.List()
	if listErr != nil {
		t.Fatalf("List failed: %v", listErr)
	}

	if len(result.Issues) != 1 || result.Issues[0].ID != rec.ID {
		t.Errorf("listing picked up non-record files: %+v", result.Issues)
	}

	if len(result.Corrupted) != 0 {
		t.Errorf("non-record files reported as corrupt: %+v", result.Corrupted)
	}
}

func TestList_EmptyDirectory(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	result, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(result.Issues) != 0 || len(result.Corrupted) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestWriteFailure_LeavesOldContentIntact(t *testing.T) {
	t.Parallel()

	injected := fs.NewInjected(fs.NewReal())
	store := newStore(t, storage.WithFS(injected))
	rec := mustCreate(t, store, issue.Issue{Title: "original"})

	injected.FailWriteFileAtomic(func(string) error { return errInjected })

	title := "replacement"

	_, updateErr := store.Update(rec.ID, storage.Patch{Title: &title})
	if !errors.Is(updateErr, errInjected) {
		t.Fatalf("expected injected failure, got %v", updateErr)
	}

	injected.FailWriteFileAtomic(nil)

	got, readErr := store.Read(rec.ID)
	if readErr != nil {
		t.Fatalf("Read failed: %v", readErr)
	}

	if got.Title != "original" {
		t.Errorf("failed write corrupted the record: %q", got.Title)
	}
}
