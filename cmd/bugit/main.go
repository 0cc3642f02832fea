// Package main provides bugit, a file-backed bug tracker with atomic,
// crash-safe storage.
package main

import (
	"os"

	"github.com/calvinalkan/bugit/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args))
}
