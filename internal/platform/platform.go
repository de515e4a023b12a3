// Package platform defines the OS abstraction layer for checkerctl.
// Running helper commands through the native shell and locating
// executables are encapsulated behind the Platform interface. Concrete
// implementations are selected at compile time via Go build tags.
package platform

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// ShellExecutor wraps command execution in the native shell.
type ShellExecutor interface {
	// WrapCommand returns an exec.Cmd that runs args through the native shell
	// (bash -c on Unix, powershell -NoProfile -Command on Windows). The
	// command is killed when ctx is done.
	WrapCommand(ctx context.Context, args []string, env []string) *exec.Cmd
}

// CommandResolver locates executables.
type CommandResolver interface {
	// Resolve returns the absolute path for command. Paths are checked
	// as given; bare names are looked up on PATH and then in the usual
	// system directories.
	Resolve(command string) (string, error)
}

// Platform is the composite interface grouping all OS-specific strategies.
// Obtained via New() which is defined in build-tagged files.
type Platform interface {
	ShellExecutor
	CommandResolver

	// Name returns a human-readable platform identifier ("unix" or "windows").
	Name() string
}

// Command describes a helper command for RunCommand.
type Command struct {
	Args []string
	// Env replaces the environment when non-empty.
	Env []string
	// Dir is the working directory. Empty means the caller's.
	Dir string
}

// CommandResult is the captured outcome of RunCommand.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunCommand runs c through sh and captures its output. A non-zero exit
// is reported in ExitCode, not as an error; err is set only when the
// command could not be run or ctx ended it.
func RunCommand(ctx context.Context, sh ShellExecutor, c Command) (*CommandResult, error) {
	cmd := sh.WrapCommand(ctx, c.Args, c.Env)
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		res.ExitCode = -1
		return res, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	res.ExitCode = -1
	return res, err
}
