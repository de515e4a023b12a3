// Package service controls the checker's systemd unit.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/checkerctl/checkerctl/internal/platform"
)

// DefaultUnit is the unit registered by the vendor install script.
const DefaultUnit = "aethir-checker"

// StateActive is the is-active answer for a running unit.
const StateActive = "active"

// stateInactive is reported when systemctl printed nothing.
const stateInactive = "inactive"

// Controller runs systemctl against one unit.
type Controller struct {
	shell  platform.ShellExecutor
	unit   string
	logger *slog.Logger
}

// New creates a Controller for unit. An empty unit means DefaultUnit.
func New(shell platform.ShellExecutor, unit string, logger *slog.Logger) *Controller {
	if unit == "" {
		unit = DefaultUnit
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Controller{shell: shell, unit: unit, logger: logger}
}

// Unit returns the controlled unit name.
func (c *Controller) Unit() string {
	return c.unit
}

// State returns the output of `systemctl is-active`. is-active exits
// non-zero for every state but active, so the exit code is ignored; when
// systemctl cannot be run or prints nothing the state is "inactive".
func (c *Controller) State(ctx context.Context) string {
	res, err := platform.RunCommand(ctx, c.shell, platform.Command{
		Args: []string{"systemctl", "is-active", c.unit},
	})
	if err != nil {
		c.logger.Debug("systemctl is-active failed", "unit", c.unit, "error", err)
		return stateInactive
	}
	state := strings.TrimSpace(res.Stdout)
	if state == "" {
		return stateInactive
	}
	return state
}

// Active reports whether the unit is running.
func (c *Controller) Active(ctx context.Context) bool {
	return c.State(ctx) == StateActive
}

// Start starts the unit.
func (c *Controller) Start(ctx context.Context) error {
	return c.run(ctx, "start")
}

// Stop stops the unit.
func (c *Controller) Stop(ctx context.Context) error {
	return c.run(ctx, "stop")
}

func (c *Controller) run(ctx context.Context, verb string) error {
	res, err := platform.RunCommand(ctx, c.shell, platform.Command{
		Args: []string{"systemctl", verb, c.unit},
	})
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", verb, c.unit, err)
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = fmt.Sprintf("exit code %d", res.ExitCode)
		}
		return fmt.Errorf("failed to %s %s: %s", verb, c.unit, msg)
	}
	c.logger.Info("systemctl "+verb, "unit", c.unit)
	return nil
}
