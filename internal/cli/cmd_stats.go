package cli

import (
	"encoding/json"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bugit/internal/issue"
)

const statsHelp = `  stats                  Show store statistics
    --json                 Print statistics as JSON`

func cmdStats(o *IO, a *app, args []string) error {
	flagSet := flag.NewFlagSet("stats", flag.ContinueOnError)
	flagSet.SetOutput(o.errOut)
	flagSet.Usage = func() {
		fprintln(flagSet.Output(), "Usage: bugit stats [options]")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Show counts, sizes, and the severity breakdown of the issue store.")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Options:")
		flagSet.PrintDefaults()
	}

	asJSON := flagSet.Bool("json", false, "Print statistics as JSON")

	if hasHelpFlag(args) {
		flagSet.SetOutput(o.out)
		flagSet.Usage()

		return nil
	}

	parseErr := flagSet.Parse(args)
	if parseErr != nil {
		return parseErr
	}

	stats, statsErr := a.store.Stats()
	if statsErr != nil {
		return statsErr
	}

	if *asJSON {
		data, encodeErr := json.MarshalIndent(stats, "", "  ")
		if encodeErr != nil {
			return fmt.Errorf("encoding stats: %w", encodeErr)
		}

		o.Printf("%s\n", data)

		return nil
	}

	o.Println("directory:  ", stats.Directory)
	o.Println("issues:     ", stats.Count)
	o.Println("corrupt:    ", stats.CorruptCount)
	o.Println("total bytes:", stats.TotalBytes)
	o.Println()
	o.Println("by severity:")

	for _, severity := range issue.Severities() {
		o.Printf("  %-9s %d\n", string(severity), stats.BySeverity[severity])
	}

	return nil
}
