package session

import (
	"errors"
	"os/exec"
	"syscall"
)

// ExitCodeFromError extracts the exit code from an exec.Cmd.Wait() error.
//
// Returns:
//   - 0 if err is nil
//   - the child's exit code if it exited normally with non-zero status
//   - 128+signum if the child was killed by a signal
//   - 1 for any other error
func ExitCodeFromError(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 1
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return ws.ExitStatus()
	}

	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
