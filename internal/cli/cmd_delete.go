package cli

import (
	"bufio"
	"strings"

	flag "github.com/spf13/pflag"
)

const deleteHelp = `  delete <id|position>   Delete an issue (backs up first)
    -f, --force            Skip the confirmation prompt
    --no-backup            Skip the pre-delete backup`

func cmdDelete(o *IO, a *app, args []string) error {
	flagSet := flag.NewFlagSet("delete", flag.ContinueOnError)
	flagSet.SetOutput(o.errOut)
	flagSet.Usage = func() {
		fprintln(flagSet.Output(), "Usage: bugit delete <id|position> [options]")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Delete one issue. The record is backed up under backups/ first;")
		fprintln(flagSet.Output(), "if the backup cannot be written the delete is aborted.")
		fprintln(flagSet.Output(), "")
		fprintln(flagSet.Output(), "Options:")
		flagSet.PrintDefaults()
	}

	force := flagSet.BoolP("force", "f", false, "Skip the confirmation prompt")
	noBackup := flagSet.Bool("no-backup", false, "Skip the pre-delete backup")

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

	rec, resolveErr := a.store.Resolve(flagSet.Arg(0))
	if resolveErr != nil {
		return resolveErr
	}

	if !*force && !confirmDelete(o, a, rec.ID, rec.Title) {
		return errDeleteAborted
	}

	withBackup := a.cfg.BackupEnabled() && !*noBackup

	deleteErr := a.store.Delete(rec.ID, withBackup)
	if deleteErr != nil {
		return deleteErr
	}

	o.Println("deleted", rec.ID)

	return nil
}

// confirmDelete prompts on stdout and reads one line from the command input.
// Anything but an explicit yes aborts.
func confirmDelete(o *IO, a *app, id, title string) bool {
	o.Printf("delete %s (%s)? [y/N]: ", id, title)

	scanner := bufio.NewScanner(a.in)
	if !scanner.Scan() {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))

	return answer == "y" || answer == "yes"
}
