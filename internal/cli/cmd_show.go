package cli

import (
	flag "github.com/spf13/pflag"
)

const showHelp = `  show <id|position>     Show one issue
    --json                 Print the record as JSON`

func cmdShow(o *IO, a *app, args []string) error {
	flagSet := flag.NewFlagSet("show", flag.ContinueOnError)
	flagSet.SetOutput(o.errOut)
	flagSet.Usage = func() {
		fprintln(flagSet.Output(), "Usage: bugit show <id|position> [options]")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Show one issue by ID or by its 1-based position in the listing.")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Options:")
		flagSet.PrintDefaults()
	}

	asJSON := flagSet.Bool("json", false, "Print the record as JSON")

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

	rec, err := a.store.Resolve(flagSet.Arg(0))
	if err != nil {
		return err
	}

	if *asJSON {
		return renderIssueJSON(o, rec)
	}

	renderIssue(o, rec)

	return nil
}
