package latex

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/robintibor/convert-notebook-to-latex/internal/process"
)

// killGrace is how long Run waits for output pipes after a cancelled
// engine has been killed.
const killGrace = 5 * time.Second

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. Commands run in their
// own process group; cancelling ctx kills the whole group, so engines that
// spawn helpers (mktexpk, xdvipdfmx) do not linger.
type ExecRunner struct{}

// Run executes name in dir and returns its captured output.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- engine name is validated by config
	cmd.Dir = dir
	process.Isolate(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return nil
	}
	cmd.WaitDelay = killGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Compile-time interface check.
var _ CommandRunner = (*ExecRunner)(nil)
