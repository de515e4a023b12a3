//go:build !windows

package platform

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixPlatform_Name(t *testing.T) {
	assert.Equal(t, "unix", New().Name())
}

func TestUnixPlatform_WrapCommand(t *testing.T) {
	p := New()
	cmd := p.WrapCommand(context.Background(), []string{"echo", "hello world", "it's"}, []string{"A=1"})

	assert.Equal(t, "bash", filepath.Base(cmd.Path))
	assert.Equal(t, []string{"bash", "-c", `echo 'hello world' 'it'\''s'`}, cmd.Args)
	assert.Equal(t, []string{"A=1"}, cmd.Env)
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"systemctl", "systemctl"},
		{"/root/install.sh", "/root/install.sh"},
		{"aethir-checker.service", "aethir-checker.service"},
		{"", "''"},
		{"a b", "'a b'"},
		{"$(rm -rf /)", "'$(rm -rf /)'"},
		{"it's", `'it'\''s'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shellQuote(tt.in), tt.in)
	}
}

func TestRunCommand(t *testing.T) {
	p := New()

	res, err := RunCommand(context.Background(), p, Command{Args: []string{"echo", "out"}})
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)

	res, err = RunCommand(context.Background(), p, Command{Args: []string{"sh", "-c", "echo err >&2; exit 4"}})
	require.NoError(t, err)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 4, res.ExitCode)

	dir := t.TempDir()
	res, err = RunCommand(context.Background(), p, Command{Args: []string{"pwd"}, Dir: dir})
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(res.Stdout))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunCommand_ContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := RunCommand(ctx, New(), Command{Args: []string{"sleep", "5"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, -1, res.ExitCode)
}

func TestUnixPlatform_Resolve(t *testing.T) {
	p := New()

	resolved, err := p.Resolve("sh")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(resolved))

	dir := t.TempDir()
	bin := filepath.Join(dir, "AethirCheckerCLI")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	resolved, err = p.Resolve(bin)
	require.NoError(t, err)
	assert.Equal(t, bin, resolved)

	_, err = p.Resolve(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command not found")

	_, err = p.Resolve("definitely-not-a-real-command-xyz")
	require.Error(t, err)

	_, err = p.Resolve("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command must be non-empty")
}
