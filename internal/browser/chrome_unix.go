//go:build !windows

package browser

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setChromeProcessGroup starts the browser in its own process group so
// renderer and GPU children can be signalled together.
func setChromeProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// killChromeProcessGroup signals the whole process group.
// force=false sends SIGTERM, force=true sends SIGKILL.
func killChromeProcessGroup(cmd *exec.Cmd, force bool) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	sig := unix.SIGTERM
	if force {
		sig = unix.SIGKILL
	}
	// Negative PID targets the entire process group
	if err := unix.Kill(-cmd.Process.Pid, sig); err != nil {
		_ = cmd.Process.Signal(sig)
	}
}

// processAlive reports whether pid still exists.
func processAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}
