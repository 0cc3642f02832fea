package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/bugit/internal/cli"
)

func backupCount(t *testing.T, c *cli.CLI) int {
	t.Helper()

	entries, err := os.ReadDir(filepath.Join(c.IssuesDir(), "backups"))
	if os.IsNotExist(err) {
		return 0
	}

	if err != nil {
		t.Fatalf("reading backups dir: %v", err)
	}

	return len(entries)
}

func Test_Delete_Force_Writes_Backup(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("new", "to be deleted")

	stdout := c.MustRun("delete", "-f", id)
	cli.AssertContains(t, stdout, "deleted")
	cli.AssertContains(t, stdout, id)

	if _, _, exitCode := c.Run("show", id); exitCode == 0 {
		t.Error("record still readable after delete")
	}

	if got := backupCount(t, c); got != 1 {
		t.Errorf("backup count=%d, want 1", got)
	}
}

func Test_Delete_No_Backup_Flag(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("new", "to be deleted")

	c.MustRun("delete", "-f", "--no-backup", id)

	if got := backupCount(t, c); got != 0 {
		t.Errorf("backup count=%d, want 0 with --no-backup", got)
	}
}

func Test_Delete_Backup_Disabled_In_Config(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteConfig(`{"issues_dir": ".bugit/issues", "backup_on_delete": false}`)

	id := c.MustRun("new", "to be deleted")
	c.MustRun("delete", "-f", id)

	if got := backupCount(t, c); got != 0 {
		t.Errorf("backup count=%d, want 0 when disabled in config", got)
	}
}

func Test_Delete_Prompts_Without_Force(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("new", "needs confirmation")

	// Answering "y" deletes.
	stdout, _, exitCode := c.RunWithInput(strings.NewReader("y\n"), "delete", id)
	if exitCode != 0 {
		t.Fatalf("confirmed delete failed with code %d", exitCode)
	}

	cli.AssertContains(t, stdout, "delete "+id)
	cli.AssertContains(t, stdout, "deleted")
}

func Test_Delete_Aborts_On_Refusal(t *testing.T) {
	t.Parallel()

	for _, answer := range []string{"n\n", "\n", "whatever\n", ""} {
		c := cli.NewCLI(t)
		id := c.MustRun("new", "survives refusal")

		_, stderr, exitCode := c.RunWithInput(strings.NewReader(answer), "delete", id)
		if exitCode == 0 {
			t.Errorf("answer %q: delete should have aborted", answer)
		}

		cli.AssertContains(t, stderr, "aborted")

		// The record survives.
		c.MustRun("show", id)
	}
}

func Test_Delete_Not_Found_Is_Repeatable(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	for range 2 {
		stderr := c.MustFail("delete", "-f", "no-such-id")
		cli.AssertContains(t, stderr, "not found")
	}
}

func Test_Delete_By_Position(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("new", "only issue")

	stdout := c.MustRun("delete", "-f", "1")
	cli.AssertContains(t, stdout, id)
}
