//go:build !windows

package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// unixPlatform implements Platform for Unix-like systems.
type unixPlatform struct{}

// newPlatform returns the Unix platform implementation.
func newPlatform() Platform {
	return &unixPlatform{}
}

// New returns the Platform for the current OS.
func New() Platform {
	return newPlatform()
}

// Name returns "unix".
func (u *unixPlatform) Name() string {
	return "unix"
}

// WrapCommand returns an exec.Cmd wrapping args in bash -c. Each argument
// is quoted for the shell.
func (u *unixPlatform) WrapCommand(ctx context.Context, args []string, env []string) *exec.Cmd {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = shellQuote(arg)
	}
	cmd := exec.CommandContext(ctx, "bash", "-c", strings.Join(quoted, " ")) //nolint:gosec // helper commands are built by checkerctl
	if len(env) > 0 {
		cmd.Env = env
	}
	return cmd
}

// systemDirs are searched when a bare command is not on PATH. Root's
// systemd tools live in sbin, which minimal PATHs often lack.
var systemDirs = []string{
	"/usr/local/sbin",
	"/usr/local/bin",
	"/usr/sbin",
	"/usr/bin",
	"/sbin",
	"/bin",
}

// Resolve locates command.
func (u *unixPlatform) Resolve(command string) (string, error) {
	if command == "" {
		return "", fmt.Errorf("command must be non-empty")
	}

	if strings.ContainsRune(command, '/') {
		abs, err := filepath.Abs(command)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", command, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", fmt.Errorf("command not found: %s", command)
		}
		return abs, nil
	}

	if resolved, err := exec.LookPath(command); err == nil {
		return resolved, nil
	}

	for _, dir := range systemDirs {
		path := filepath.Join(dir, command)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", fmt.Errorf("command not found: %s", command)
}

// shellQuote single-quotes s unless it consists only of characters the
// shell treats literally.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./=:,+@%", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
