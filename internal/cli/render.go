package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/calvinalkan/bugit/internal/issue"
	"github.com/calvinalkan/bugit/internal/storage"
)

const (
	maxTableTitleWidth = 60
	timeFormat         = "2006-01-02 15:04"
)

// renderTable prints issues as an aligned table. positions carries the
// 1-based index position of each issue; filtered listings keep the positions
// from the unfiltered index so refs stay valid. Column widths use display
// width, not byte length, so titles with wide runes stay aligned.
func renderTable(o *IO, issues []issue.Issue, positions []int) {
	if len(issues) == 0 {
		o.Println("no issues")

		return
	}

	headers := []string{"POS", "ID", "SEVERITY", "TYPE", "TITLE", "TAGS", "CREATED"}
	rows := make([][]string, 0, len(issues))

	for i, rec := range issues {
		title := rec.Title
		if runewidth.StringWidth(title) > maxTableTitleWidth {
			title = runewidth.Truncate(title, maxTableTitleWidth, "...")
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", positions[i]),
			rec.ID,
			string(rec.Severity),
			rec.Type,
			title,
			strings.Join(rec.Tags, ","),
			formatTime(rec.CreatedAt),
		})
	}

	widths := make([]int, len(headers))
	for col, h := range headers {
		widths[col] = runewidth.StringWidth(h)
	}

	for _, row := range rows {
		for col, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[col] {
				widths[col] = w
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for col, cell := range cells {
			parts[col] = runewidth.FillRight(cell, widths[col])
		}

		o.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)

	for _, row := range rows {
		printRow(row)
	}
}

// renderIssue prints the detail view used by show.
func renderIssue(o *IO, rec issue.Issue) {
	o.Println("id:        " + rec.ID)
	o.Println("severity:  " + string(rec.Severity))
	o.Println("type:      " + rec.Type)

	if len(rec.Tags) > 0 {
		o.Println("tags:      " + strings.Join(rec.Tags, ", "))
	}

	o.Println("created:   " + formatTime(rec.CreatedAt))

	if !rec.UpdatedAt.Equal(rec.CreatedAt) {
		o.Println("updated:   " + formatTime(rec.UpdatedAt))
	}

	o.Println()
	o.Println(rec.Title)

	if rec.Description != "" && rec.Description != rec.Title {
		o.Println()
		o.Println(rec.Description)
	}
}

// renderIssueJSON prints the record's canonical document, extras included.
func renderIssueJSON(o *IO, rec issue.Issue) error {
	data, err := issue.Encode(rec)
	if err != nil {
		return err
	}

	o.Printf("%s", data)

	return nil
}

// renderIssuesJSON prints a JSON array of canonical documents.
func renderIssuesJSON(o *IO, issues []issue.Issue) error {
	docs := make([]json.RawMessage, 0, len(issues))

	for _, rec := range issues {
		data, err := issue.Encode(rec)
		if err != nil {
			return err
		}

		docs = append(docs, data)
	}

	out, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding listing: %w", err)
	}

	o.Printf("%s\n", out)

	return nil
}

// warnCorrupted surfaces skipped files from a listing without failing it.
func warnCorrupted(o *IO, corrupted []storage.CorruptFile) {
	for _, c := range corrupted {
		o.Warn(
			fmt.Sprintf("skipped corrupt issue file %s (%v)", c.Path, c.Err),
			"inspect or remove the file; healthy issues are unaffected",
		)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Local().Format(timeFormat)
}
