//go:build !windows

package service

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkerctl/checkerctl/internal/platform/testutil"
)

func newTestController(snippet string) (*Controller, *testutil.FakePlatform) {
	fake := testutil.NewFakePlatform()
	fake.Script(snippet)
	return New(fake, "", slog.New(slog.NewTextHandler(io.Discard, nil))), fake
}

func TestState(t *testing.T) {
	tests := []struct {
		name       string
		snippet    string
		wantState  string
		wantActive bool
	}{
		{"active", "echo active", "active", true},
		{"inactive exits 3", "echo inactive; exit 3", "inactive", false},
		{"failed", "echo failed; exit 3", "failed", false},
		{"activating", "echo activating; exit 3", "activating", false},
		{"no output", "exit 4", "inactive", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newTestController(tt.snippet)
			assert.Equal(t, tt.wantState, c.State(context.Background()))
			assert.Equal(t, tt.wantActive, c.Active(context.Background()))
			assert.True(t, fake.CalledWith("WrapCommand", "systemctl", "is-active", DefaultUnit))
		})
	}
}

func TestState_CommandCannotRun(t *testing.T) {
	fake := testutil.NewFakePlatform()
	fake.WrapCommandFunc = func(ctx context.Context, _ []string, _ []string) *exec.Cmd {
		return exec.CommandContext(ctx, "/nonexistent/systemctl")
	}
	c := New(fake, "checker", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, "inactive", c.State(context.Background()))
	assert.Equal(t, "checker", c.Unit())
}

func TestStartStop(t *testing.T) {
	tests := []struct {
		name    string
		snippet string
		wantErr string
	}{
		{"ok", "exit 0", ""},
		{"stderr message", "echo 'Unit aethir-checker.service not found.' >&2; exit 5", "Unit aethir-checker.service not found."},
		{"silent failure", "exit 1", "exit code 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newTestController(tt.snippet)

			for verb, fn := range map[string]func(context.Context) error{"start": c.Start, "stop": c.Stop} {
				err := fn(context.Background())
				if tt.wantErr == "" {
					require.NoError(t, err)
				} else {
					require.Error(t, err)
					assert.Contains(t, err.Error(), "failed to "+verb+" aethir-checker")
					assert.Contains(t, err.Error(), tt.wantErr)
				}
				assert.True(t, fake.CalledWith("WrapCommand", "systemctl", verb, DefaultUnit))
			}
		})
	}
}
