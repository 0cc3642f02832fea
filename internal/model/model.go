// Package model turns freeform bug descriptions into structured issue
// fields. The store never calls this package; callers run it before create.
package model

import (
	"errors"
	"regexp"
	"strings"

	"github.com/calvinalkan/bugit/internal/issue"
)

// ErrEmptyDescription is returned for blank input.
var ErrEmptyDescription = errors.New("description cannot be empty")

// Generator produces issue fields from a freeform description. The returned
// fields still go through issue.ValidateOrDefault before reaching storage.
type Generator interface {
	GenerateFields(description string) (issue.Issue, error)
}

// RuleBased is a deterministic keyword-driven Generator. It needs no network
// and no credentials, which also makes it the implementation tests run
// against.
type RuleBased struct{}

// NewRuleBased returns a new rule-based generator.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

const maxGeneratedTitleLen = 80

//nolint:gochecknoglobals // package-level constants
var (
	criticalWords = []string{"crash", "hang", "critical", "fatal", "broken"}
	lowWords      = []string{"slow", "minor", "cosmetic"}
	highWords     = []string{"error", "bug", "issue", "problem"}

	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

// GenerateFields derives severity from keywords, tags from topic words, and
// a title from the first sentence of the description.
func (g *RuleBased) GenerateFields(description string) (issue.Issue, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return issue.Issue{}, ErrEmptyDescription
	}

	lower := strings.ToLower(description)

	return issue.Issue{
		Title:       generateTitle(description),
		Description: description,
		Severity:    detectSeverity(lower),
		Type:        issue.TypeBug,
		Tags:        detectTags(lower),
	}, nil
}

func detectSeverity(lower string) issue.Severity {
	switch {
	case containsAny(lower, criticalWords):
		return issue.SeverityCritical
	case containsAny(lower, lowWords):
		return issue.SeverityLow
	case containsAny(lower, highWords):
		return issue.SeverityHigh
	default:
		return issue.SeverityMedium
	}
}

func detectTags(lower string) []string {
	var tags []string

	for _, rule := range []struct {
		tag   string
		words []string
	}{
		{"auth", []string{"login", "auth"}},
		{"ui", []string{"ui", "interface"}},
		{"camera", []string{"camera"}},
		{"logout", []string{"logout"}},
	} {
		if containsAny(lower, rule.words) {
			tags = append(tags, rule.tag)
		}
	}

	return tags
}

// generateTitle takes the first sentence, truncated to 80 runes.
func generateTitle(description string) string {
	title := description

	if parts := sentenceSplit.Split(description, 2); len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		title = strings.TrimSpace(parts[0])
	}

	runes := []rune(title)
	if len(runes) > maxGeneratedTitleLen {
		title = string(runes[:maxGeneratedTitleLen-3]) + "..."
	}

	return title
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}

	return false
}

// Compile-time interface check.
var _ Generator = (*RuleBased)(nil)
