package issue

// Severity classifies how urgent an issue is. Severities have a fixed total
// order (critical > high > medium > low) used by the positional index; the
// order is not lexical.
type Severity string

// Valid severities, least to most urgent.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRanks maps severities to their sort rank (higher = more urgent).
//
//nolint:gochecknoglobals // package-level constant
var severityRanks = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	_, ok := severityRanks[s]

	return ok
}

// Rank returns the sort rank of s. Unknown severities rank below low so that
// records with garbage severities sink to the bottom of listings instead of
// disappearing.
func (s Severity) Rank() int {
	rank, ok := severityRanks[s]
	if !ok {
		return -1
	}

	return rank
}

// Severities returns all valid severities ordered most urgent first.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}
