// Package testutil provides test helpers for the platform package.
package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/checkerctl/checkerctl/internal/platform"
)

// FakePlatform is a configurable test double implementing platform.Platform.
// Test authors set the function fields to control behavior per test case.
type FakePlatform struct {
	// NameValue is returned by Name(). Default: "fake".
	NameValue string

	// WrapCommandFunc overrides WrapCommand. If nil, args run directly
	// without a shell.
	WrapCommandFunc func(ctx context.Context, args []string, env []string) *exec.Cmd

	// ResolveFunc overrides Resolve. If nil, returns "/fake/bin/<command>".
	ResolveFunc func(command string) (string, error)

	// Calls tracks method invocations for assertion.
	Calls []Call
}

// Call records a single method invocation on FakePlatform.
type Call struct {
	Method string
	Args   []string
}

// NewFakePlatform returns a FakePlatform with sensible defaults.
func NewFakePlatform() *FakePlatform {
	return &FakePlatform{NameValue: "fake"}
}

// Name returns the configured platform name.
func (f *FakePlatform) Name() string {
	return f.NameValue
}

// WrapCommand returns an exec.Cmd or delegates to WrapCommandFunc.
func (f *FakePlatform) WrapCommand(ctx context.Context, args []string, env []string) *exec.Cmd {
	f.Calls = append(f.Calls, Call{Method: "WrapCommand", Args: args})
	if f.WrapCommandFunc != nil {
		return f.WrapCommandFunc(ctx, args, env)
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // test helper
	if len(env) > 0 {
		cmd.Env = env
	}
	return cmd
}

// Resolve returns the binary path or delegates to ResolveFunc.
func (f *FakePlatform) Resolve(command string) (string, error) {
	f.Calls = append(f.Calls, Call{Method: "Resolve", Args: []string{command}})
	if f.ResolveFunc != nil {
		return f.ResolveFunc(command)
	}
	if command == "" {
		return "", fmt.Errorf("command must be non-empty")
	}
	return filepath.Join("/fake/bin", command), nil
}

// Script makes WrapCommand run a shell snippet instead of the real command,
// so tests can fake exit codes and output of tools such as systemctl.
func (f *FakePlatform) Script(snippet string) {
	f.WrapCommandFunc = func(ctx context.Context, _ []string, env []string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, "sh", "-c", snippet)
		if len(env) > 0 {
			cmd.Env = env
		}
		return cmd
	}
}

// CallCount returns the number of times a method was called.
func (f *FakePlatform) CallCount(method string) int {
	count := 0
	for _, c := range f.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// CalledWith returns true if the method was called with the given args (prefix match).
func (f *FakePlatform) CalledWith(method string, args ...string) bool {
	for _, c := range f.Calls {
		if c.Method != method {
			continue
		}
		if len(args) > len(c.Args) {
			continue
		}
		match := true
		for i, a := range args {
			if !strings.Contains(c.Args[i], a) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Verify compile-time interface compliance.
var _ platform.Platform = (*FakePlatform)(nil)
