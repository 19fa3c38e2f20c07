//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Isolate starts cmd in a process group of its own, so KillProcessGroup
// also reaches the children it spawns.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; callers still wait on the process itself
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
