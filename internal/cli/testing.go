package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CLI runs bugit commands in tests against a temp working directory.
type CLI struct {
	t   *testing.T
	Dir string
}

// NewCLI creates a test CLI with a temp directory.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{t: t, Dir: t.TempDir()}
}

// Run executes the CLI with the given args and returns stdout, stderr, and
// exit code. Args should not include "bugit" or "--cwd"; those are added.
func (r *CLI) Run(args ...string) (string, string, int) {
	return r.RunWithInput(strings.NewReader(""), args...)
}

// RunWithInput executes the CLI with the given stdin.
func (r *CLI) RunWithInput(stdin io.Reader, args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"bugit", "--cwd", r.Dir}, args...)
	code := Run(stdin, &outBuf, &errBuf, fullArgs)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes the CLI and fails the test on a non-zero exit code.
// Returns trimmed stdout.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds.
// Returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// IssuesDir returns the resolved default issues directory.
func (r *CLI) IssuesDir() string {
	return filepath.Join(r.Dir, DefaultIssuesDir)
}

// ReadIssue reads and returns the content of an issue file.
func (r *CLI) ReadIssue(id string) string {
	r.t.Helper()

	content, err := os.ReadFile(filepath.Join(r.IssuesDir(), id+".json"))
	if err != nil {
		r.t.Fatalf("failed to read issue %s: %v", id, err)
	}

	return string(content)
}

// WriteIssue writes raw content to an issue file, creating the issues
// directory if needed.
func (r *CLI) WriteIssue(id, content string) {
	r.t.Helper()

	mkdirErr := os.MkdirAll(r.IssuesDir(), 0o750)
	if mkdirErr != nil {
		r.t.Fatalf("failed to create issues dir: %v", mkdirErr)
	}

	writeErr := os.WriteFile(filepath.Join(r.IssuesDir(), id+".json"), []byte(content), 0o600)
	if writeErr != nil {
		r.t.Fatalf("failed to write issue %s: %v", id, writeErr)
	}
}

// WriteConfig writes a .bugitrc in the working directory.
func (r *CLI) WriteConfig(content string) {
	r.t.Helper()

	writeErr := os.WriteFile(filepath.Join(r.Dir, ConfigFileName), []byte(content), 0o600)
	if writeErr != nil {
		r.t.Fatalf("failed to write config: %v", writeErr)
	}
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
