//go:build windows

package platform

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// windowsPlatform implements Platform for Windows.
type windowsPlatform struct{}

func newPlatform() Platform {
	return &windowsPlatform{}
}

// New returns the Platform for the current OS.
func New() Platform {
	return newPlatform()
}

// Name returns "windows".
func (w *windowsPlatform) Name() string {
	return "windows"
}

// WrapCommand runs args through PowerShell. Each arg is quoted to handle
// spaces and special characters.
func (w *windowsPlatform) WrapCommand(ctx context.Context, args []string, env []string) *exec.Cmd {
	quotedArgs := make([]string, len(args))
	for i, arg := range args {
		if strings.ContainsAny(arg, " \t\"'&|<>()") {
			quotedArgs[i] = fmt.Sprintf("'%s'", strings.ReplaceAll(arg, "'", "''"))
		} else {
			quotedArgs[i] = arg
		}
	}
	cmdStr := "& " + strings.Join(quotedArgs, " ")
	cmd := exec.CommandContext(ctx, "powershell.exe", "-NoProfile", "-ExecutionPolicy", "Bypass", "-Command", cmdStr) //nolint:gosec // helper commands are built by checkerctl
	if len(env) > 0 {
		cmd.Env = env
	}
	return cmd
}

// Resolve locates command with PATHEXT awareness.
func (w *windowsPlatform) Resolve(command string) (string, error) {
	if command == "" {
		return "", fmt.Errorf("command must be non-empty")
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return "", fmt.Errorf("command not found: %s", command)
	}
	return resolved, nil
}
