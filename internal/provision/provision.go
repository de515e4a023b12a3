// Package provision runs the vendor install script that unpacks the
// checker CLI and registers its systemd unit.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/checkerctl/checkerctl/internal/platform"
)

// ErrScriptMissing is returned when the install script does not exist.
var ErrScriptMissing = errors.New("install script not found")

// Result is the outcome of an install run.
type Result struct {
	Script   string
	Stdout   string
	Stderr   string
	ExitCode int
}

// Provisioner runs install scripts through a shell executor.
type Provisioner struct {
	shell  platform.ShellExecutor
	logger *slog.Logger
}

// New creates a Provisioner. A nil logger writes text to stderr.
func New(shell platform.ShellExecutor, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Provisioner{shell: shell, logger: logger}
}

// Install runs `bash <script>` from the script's own directory, since
// the vendor script refers to its files by relative path. A non-zero exit
// returns the captured result together with an error.
func (p *Provisioner) Install(ctx context.Context, script string) (*Result, error) {
	abs, err := filepath.Abs(script)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve install script: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrScriptMissing, abs)
		}
		return nil, fmt.Errorf("failed to stat install script: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrScriptMissing, abs)
	}

	p.logger.Info("running install script", "script", abs)
	out, err := platform.RunCommand(ctx, p.shell, platform.Command{
		Args: []string{"bash", abs},
		Dir:  filepath.Dir(abs),
	})
	if out == nil {
		return nil, fmt.Errorf("failed to run install script: %w", err)
	}

	res := &Result{Script: abs, Stdout: out.Stdout, Stderr: out.Stderr, ExitCode: out.ExitCode}
	if err != nil {
		return res, fmt.Errorf("failed to run install script: %w", err)
	}
	if res.ExitCode != 0 {
		return res, fmt.Errorf("install script exited with code %d", res.ExitCode)
	}
	p.logger.Debug("install script finished", "script", abs)
	return res, nil
}
