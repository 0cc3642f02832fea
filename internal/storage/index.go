package storage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/calvinalkan/bugit/internal/issue"
)

// IndexEntry is one row of the ephemeral positional index.
type IndexEntry struct {
	Position int
	ID       string
}

// sortIssues orders records by severity descending (fixed severity order,
// not lexical), then created_at descending, then id ascending. The id
// tiebreak makes the order a reproducible total order even for records
// created within the same timestamp.
func sortIssues(issues []issue.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]

		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}

		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}

		return a.ID < b.ID
	})
}

// BuildIndex assigns 1-based positions over issues in index order. The input
// is not modified. The result is a projection valid only until the record
// set changes; it is recomputed on every listing and never persisted.
func BuildIndex(issues []issue.Issue) []IndexEntry {
	sorted := make([]issue.Issue, len(issues))
	copy(sorted, issues)
	sortIssues(sorted)

	index := make([]IndexEntry, len(sorted))
	for i, rec := range sorted {
		index[i] = IndexEntry{Position: i + 1, ID: rec.ID}
	}

	return index
}

// GetByPosition rebuilds the index from a fresh listing and returns the
// record at the 1-based position. Positions are not stable across calls if
// records were added or removed in between; callers must not cache them
// beyond a single command invocation.
func (s *Store) GetByPosition(pos int) (issue.Issue, error) {
	if pos < 1 {
		return issue.Issue{}, fmt.Errorf("%w: %d", ErrPositionOutOfRange, pos)
	}

	result, listErr := s.List()
	if listErr != nil {
		return issue.Issue{}, listErr
	}

	if pos > len(result.Issues) {
		return issue.Issue{}, fmt.Errorf("%w: %d (have %d issues)", ErrPositionOutOfRange, pos, len(result.Issues))
	}

	// List already returns index order.
	return result.Issues[pos-1], nil
}

// Resolve dispatches ref to a positional or id lookup: a small positive
// integer is a 1-based index position, anything else is an id. KSUIDs are 27
// characters of base62 and never look like a position.
func (s *Store) Resolve(ref string) (issue.Issue, error) {
	ref = strings.TrimSpace(ref)

	if pos, err := strconv.Atoi(ref); err == nil {
		return s.GetByPosition(pos)
	}

	return s.Read(ref)
}
