//go:build !windows

package session

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child and everything it forks into a new
// process group so termination reaches the whole tree.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// interruptGroup sends SIGTERM to the child's process group. ESRCH is
// ignored: the group is already gone.
func interruptGroup(p *os.Process) {
	_ = syscall.Kill(-p.Pid, syscall.SIGTERM)
}

// killGroup sends SIGKILL to the child's process group.
func killGroup(p *os.Process) {
	_ = syscall.Kill(-p.Pid, syscall.SIGKILL)
}
