//go:build windows

package session

import (
	"os"
	"os/exec"
)

func setProcessGroup(*exec.Cmd) {}

// interruptGroup has no graceful equivalent for console-less children on
// Windows, so it kills the direct child.
func interruptGroup(p *os.Process) {
	_ = p.Kill()
}

func killGroup(p *os.Process) {
	_ = p.Kill()
}
