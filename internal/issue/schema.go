package issue

import (
	"fmt"
	"slices"
	"strings"
)

// Field limits applied by ValidateOrDefault.
const (
	MaxTitleLen       = 120
	MaxDescriptionLen = 10000

	truncationMarker = "..."
)

// ValidateOrDefault normalizes caller-supplied fields into a valid issue:
// required fields must be present, everything else gets a sane default.
// It runs before fields reach the store; the store itself never defaults
// anything. Store-managed fields (id, timestamps) pass through untouched.
func ValidateOrDefault(fields Issue) (Issue, error) {
	rec := fields

	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" {
		return Issue{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	rec.Title = truncate(rec.Title, MaxTitleLen)

	rec.Description = strings.TrimSpace(rec.Description)
	if rec.Description == "" {
		rec.Description = rec.Title
	}

	rec.Description = truncate(rec.Description, MaxDescriptionLen)

	if !rec.Severity.Valid() {
		rec.Severity = SeverityMedium
	}

	if !slices.Contains(validTypes, rec.Type) {
		rec.Type = TypeUnknown
	}

	rec.Tags = normalizeTags(rec.Tags)
	rec.SchemaVersion = SchemaVersion

	return rec, nil
}

// IsValidType checks if the issue type is one of the known types.
func IsValidType(issueType string) bool {
	return slices.Contains(validTypes, issueType)
}

// truncate shortens s to at most limit runes, marking the cut. Counting
// runes rather than bytes avoids splitting multi-byte characters.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit-len(truncationMarker)]) + truncationMarker
}

// normalizeTags trims whitespace, drops empties and duplicates, and returns
// nil for an empty result so encoded documents omit the field entirely.
func normalizeTags(tags []string) []string {
	var out []string

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}

		out = append(out, tag)
	}

	return out
}
