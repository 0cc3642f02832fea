package cli

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bugit/internal/issue"
)

const newHelp = `  new <description>      Create an issue, prints ID
    -s, --severity         Severity (low|medium|high|critical) [default: inferred]
    -t, --type             Type (bug|feature|chore) [default: inferred]
    --title                Title override [default: inferred]
    --tag                  Tag (repeatable)
    --json                 Print the created record as JSON`

func cmdNew(o *IO, a *app, args []string) error {
	flagSet := flag.NewFlagSet("new", flag.ContinueOnError)
	flagSet.SetOutput(o.errOut)
	flagSet.Usage = func() {
		fprintln(flagSet.Output(), "Usage: bugit new <description> [options]")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Create a new issue from a free-form description. Prints the issue ID.")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Options:")
		flagSet.PrintDefaults()
	}

	severity := flagSet.StringP("severity", "s", "", "Severity: low|medium|high|critical")
	issueType := flagSet.StringP("type", "t", "", "Type: bug|feature|chore")
	title := flagSet.String("title", "", "Title override")
	tags := flagSet.StringArray("tag", nil, "Tag (repeatable)")
	asJSON := flagSet.Bool("json", false, "Print the created record as JSON")

	if hasHelpFlag(args) {
		flagSet.SetOutput(o.out)
		flagSet.Usage()

		return nil
	}

	parseErr := flagSet.Parse(args)
	if parseErr != nil {
		return parseErr
	}

	description := strings.TrimSpace(strings.Join(flagSet.Args(), " "))
	if description == "" {
		return errDescriptionRequired
	}

	fields, genErr := a.gen.GenerateFields(description)
	if genErr != nil {
		return genErr
	}

	switch {
	case flagSet.Changed("severity"):
		fields.Severity = issue.Severity(*severity)
		if !fields.Severity.Valid() {
			return fmt.Errorf("%w: unknown severity %q", issue.ErrValidation, *severity)
		}
	case fields.Severity == issue.SeverityMedium:
		// Medium is the generator's no-signal fallback; a configured default
		// severity replaces it. Keyword-derived severities stand.
		fields.Severity = a.cfg.Severity()
	}

	if flagSet.Changed("type") {
		if !issue.IsValidType(*issueType) {
			return fmt.Errorf("%w: unknown type %q", issue.ErrValidation, *issueType)
		}

		fields.Type = *issueType
	}

	if flagSet.Changed("title") {
		fields.Title = *title
	}

	fields.Tags = append(fields.Tags, *tags...)

	fields, validateErr := issue.ValidateOrDefault(fields)
	if validateErr != nil {
		return validateErr
	}

	rec, createErr := a.store.Create(fields)
	if createErr != nil {
		return createErr
	}

	if *asJSON {
		return renderIssueJSON(o, rec)
	}

	o.Println(rec.ID)

	return nil
}
