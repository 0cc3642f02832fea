package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// shellHistoryFile returns the path to the shell history file.
func shellHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".bugit_history")
}

// runShell is the interactive command loop. It dispatches the same commands
// as the one-shot CLI, so everything available there works here too.
func runShell(o *IO, a *app) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(shellCompleter)

	if f, err := os.Open(shellHistoryFile()); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}

	o.Printf("bugit shell (store: %s)\n", a.store.Dir())
	o.Println("Type 'help' for available commands, 'exit' to leave.")
	o.Println()

	for {
		input, promptErr := line.Prompt("bugit> ")
		if promptErr != nil {
			if errors.Is(promptErr, liner.ErrPromptAborted) || errors.Is(promptErr, io.EOF) {
				o.Println()

				break
			}

			return promptErr
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			saveShellHistory(line)

			return nil
		case "help", "?":
			printUsage(o.out)
		default:
			cmdErr := dispatch(o, a, cmd, args)
			if cmdErr != nil {
				fprintln(o.errOut, "error:", cmdErr)
			}
		}
	}

	saveShellHistory(line)

	return nil
}

func saveShellHistory(line *liner.State) {
	if path := shellHistoryFile(); path != "" {
		if f, err := os.Create(path); err == nil { //nolint:gosec // path is under the user's home
			_, _ = line.WriteHistory(f)
			_ = f.Close()
		}
	}
}

// shellCompleter provides tab completion for command names.
func shellCompleter(line string) []string {
	commands := []string{
		"new", "show", "ls", "list",
		"edit", "delete", "rm", "stats",
		"help", "exit", "quit", "q",
	}

	var matches []string

	for _, cmd := range commands {
		if strings.HasPrefix(cmd, strings.ToLower(line)) {
			matches = append(matches, cmd)
		}
	}

	return matches
}
