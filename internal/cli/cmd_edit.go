package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bugit/internal/issue"
	"github.com/calvinalkan/bugit/internal/storage"
)

const editHelp = `  edit <id|position>     Edit issue fields
    --title                New title
    -d, --description      New description
    -s, --severity         New severity
    -t, --type             New type
    --add-tag              Add a tag (repeatable)
    --remove-tag           Remove a tag (repeatable)
    --json                 Print the updated record as JSON`

func cmdEdit(o *IO, a *app, args []string) error {
	flagSet := flag.NewFlagSet("edit", flag.ContinueOnError)
	flagSet.SetOutput(o.errOut)
	flagSet.Usage = func() {
		fprintln(flagSet.Output(), "Usage: bugit edit <id|position> [options]")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Edit fields of one issue. Fields without a flag are left unchanged;")
		fprintln(flagSet.Output(), "the ID and creation time never change.")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Options:")
		flagSet.PrintDefaults()
	}

	title := flagSet.String("title", "", "New title")
	description := flagSet.StringP("description", "d", "", "New description")
	severity := flagSet.StringP("severity", "s", "", "New severity")
	issueType := flagSet.StringP("type", "t", "", "New type")
	addTags := flagSet.StringArray("add-tag", nil, "Add a tag (repeatable)")
	removeTags := flagSet.StringArray("remove-tag", nil, "Remove a tag (repeatable)")
	asJSON := flagSet.Bool("json", false, "Print the updated record as JSON")

	if hasHelpFlag(args) {
		flagSet.SetOutput(o.out)
		flagSet.Usage()

		return nil
	}

	parseErr := flagSet.Parse(args)
	if parseErr != nil {
		return parseErr
	}

	if flagSet.NArg() == 0 {
		return errRefRequired
	}

	var patch storage.Patch

	if flagSet.Changed("title") {
		patch.Title = title
	}

	if flagSet.Changed("description") {
		patch.Description = description
	}

	if flagSet.Changed("severity") {
		sev := issue.Severity(*severity)
		patch.Severity = &sev
	}

	if flagSet.Changed("type") {
		patch.Type = issueType
	}

	patch.AddTags = *addTags
	patch.RemoveTags = *removeTags

	if patchEmpty(patch) {
		return errNothingToEdit
	}

	// Resolve the ref outside the write path; Update itself works by id only.
	rec, resolveErr := a.store.Resolve(flagSet.Arg(0))
	if resolveErr != nil {
		return resolveErr
	}

	updated, updateErr := a.store.Update(rec.ID, patch)
	if updateErr != nil {
		return updateErr
	}

	if *asJSON {
		return renderIssueJSON(o, updated)
	}

	o.Println(updated.ID)

	return nil
}

func patchEmpty(p storage.Patch) bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Severity == nil &&
		p.Type == nil &&
		len(p.AddTags) == 0 &&
		len(p.RemoveTags) == 0
}
