package cli

import (
	"fmt"
	"slices"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bugit/internal/issue"
)

const lsHelp = `  ls                     List issues, most urgent first
    -s, --severity         Filter by severity
    --tag                  Filter by tag (repeatable, all must match)
    --json                 Print records as a JSON array`

func cmdLs(o *IO, a *app, args []string) error {
	flagSet := flag.NewFlagSet("ls", flag.ContinueOnError)
	flagSet.SetOutput(o.errOut)
	flagSet.Usage = func() {
		fprintln(flagSet.Output(), "Usage: bugit ls [options]")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "List issues sorted by severity (most urgent first), then newest first.")
		fprintln(flagSet.Output(), "Positions shown are valid until the next change to the issue set.")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Options:")
		flagSet.PrintDefaults()
	}

	severity := flagSet.StringP("severity", "s", "", "Filter by severity")
	tags := flagSet.StringArray("tag", nil, "Filter by tag (repeatable)")
	asJSON := flagSet.Bool("json", false, "Print records as a JSON array")

	if hasHelpFlag(args) {
		flagSet.SetOutput(o.out)
		flagSet.Usage()

		return nil
	}

	parseErr := flagSet.Parse(args)
	if parseErr != nil {
		return parseErr
	}

	if flagSet.Changed("severity") && !issue.Severity(*severity).Valid() {
		return fmt.Errorf("%w: unknown severity %q", issue.ErrValidation, *severity)
	}

	result, listErr := a.store.List()
	if listErr != nil {
		return listErr
	}

	warnCorrupted(o, result.Corrupted)

	// Positions come from the unfiltered index so a filtered listing still
	// shows refs that show/edit/delete will resolve.
	filtered := make([]issue.Issue, 0, len(result.Issues))
	positions := make([]int, 0, len(result.Issues))

	for i, rec := range result.Issues {
		if flagSet.Changed("severity") && rec.Severity != issue.Severity(*severity) {
			continue
		}

		if !hasAllTags(rec.Tags, *tags) {
			continue
		}

		filtered = append(filtered, rec)
		positions = append(positions, i+1)
	}

	if *asJSON {
		return renderIssuesJSON(o, filtered)
	}

	renderTable(o, filtered, positions)

	return nil
}

func hasAllTags(have, want []string) bool {
	for _, tag := range want {
		if !slices.Contains(have, tag) {
			return false
		}
	}

	return true
}
