// Package cli implements the bugit command layer: argument parsing, output
// rendering, and the interactive shell. All persistence goes through
// internal/storage; the CLI owns no storage primitives of its own.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/bugit/internal/model"
	"github.com/calvinalkan/bugit/internal/storage"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// app bundles what every command needs.
type app struct {
	store *storage.Store
	gen   model.Generator
	cfg   Config
	in    io.Reader
}

// Run is the main entry point. Returns exit code.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string) int {
	if len(args) < minArgs {
		printUsage(out)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	// Default workDir to current directory
	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}
	}

	cfg, source, err := LoadConfig(workDir, flags.configPath, flags.issuesDir)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	cmd := flags.remaining[0]
	cmdArgs := flags.remaining[1:]

	if cmd == "-h" || cmd == helpFlag {
		printUsage(out)

		return 0
	}

	o := NewIO(out, errOut)

	// print-config needs no store and must not create directories.
	if cmd == "print-config" {
		err = cmdPrintConfig(o, cfg, source)
		if err != nil {
			fprintln(errOut, "error:", err)

			return 1
		}

		return o.Finish()
	}

	issuesDir := cfg.IssuesDir
	if !filepath.IsAbs(issuesDir) {
		issuesDir = filepath.Join(workDir, issuesDir)
	}

	store, err := storage.New(issuesDir)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	a := &app{
		store: store,
		gen:   model.NewRuleBased(),
		cfg:   cfg,
		in:    in,
	}

	if cmd == "shell" {
		err = runShell(o, a)
	} else {
		err = dispatch(o, a, cmd, cmdArgs)
	}

	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	return o.Finish()
}

// dispatch routes a command to its implementation. Shared by Run and the
// interactive shell.
func dispatch(o *IO, a *app, cmd string, args []string) error {
	switch cmd {
	case "new":
		return cmdNew(o, a, args)
	case "show":
		return cmdShow(o, a, args)
	case "ls", "list":
		return cmdLs(o, a, args)
	case "edit":
		return cmdEdit(o, a, args)
	case "delete", "rm":
		return cmdDelete(o, a, args)
	case "stats":
		return cmdStats(o, a, args)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
}

type globalFlags struct {
	workDir    string
	configPath string
	issuesDir  string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if (arg == "-C" || arg == "--cwd") && idx+1 < len(args) {
		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// --issues-dir flag
	if arg == "--issues-dir" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.issuesDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--issues-dir="); ok {
		flags.issuesDir = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func cmdPrintConfig(o *IO, cfg Config, source string) error {
	formatted, err := FormatConfig(cfg)
	if err != nil {
		return err
	}

	o.Println(formatted)
	o.Println("")
	o.Println("# Source:")

	if source != "" {
		o.Println("#  ", source)
	} else {
		o.Println("#   (using defaults only)")
	}

	return nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == helpFlag {
			return true
		}
	}

	return false
}

func printUsage(writer io.Writer) {
	fprintln(writer, `bugit - file-backed bug tracker

Usage: bugit [options] <command> [args]

Options:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file
  --issues-dir <dir>     Override the issues directory

Commands:`)
	fprintln(writer, newHelp)
	fprintln(writer, showHelp)
	fprintln(writer, lsHelp)
	fprintln(writer, editHelp)
	fprintln(writer, deleteHelp)
	fprintln(writer, statsHelp)
	fprintln(writer, `  shell                  Interactive shell`)
	fprintln(writer, `  print-config           Show resolved configuration`)
}
