package storage

import (
	"fmt"
	"os"

	"github.com/calvinalkan/bugit/internal/issue"
)

// Stats summarizes the on-disk state of the store for monitoring and
// debugging.
type Stats struct {
	Directory    string                 `json:"directory"`
	Count        int                    `json:"count"`
	CorruptCount int                    `json:"corrupt_count"`
	TotalBytes   int64                  `json:"total_bytes"`
	BySeverity   map[issue.Severity]int `json:"by_severity"`
}

// Stats walks the issues directory. File counts and sizes come straight from
// directory entries without decoding content; severity and corruption counts
// require a decode pass and reuse List.
func (s *Store) Stats() (Stats, error) {
	stats := Stats{
		Directory:  s.paths.dir,
		BySeverity: make(map[issue.Severity]int, len(issue.Severities())),
	}

	for _, severity := range issue.Severities() {
		stats.BySeverity[severity] = 0
	}

	entries, readErr := s.fsys.ReadDir(s.paths.dir)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return stats, nil
		}

		return Stats{}, fmt.Errorf("reading issues directory: %w", readErr)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if _, ok := s.paths.idFromFilename(entry.Name()); !ok {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			// Deleted between ReadDir and Info.
			continue
		}

		stats.TotalBytes += info.Size()
	}

	result, listErr := s.List()
	if listErr != nil {
		return Stats{}, listErr
	}

	stats.Count = len(result.Issues)
	stats.CorruptCount = len(result.Corrupted)

	for _, rec := range result.Issues {
		if rec.Severity.Valid() {
			stats.BySeverity[rec.Severity]++
		}
	}

	return stats, nil
}
