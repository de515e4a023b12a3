// Package reaper finds and kills running instances of a program by the
// base name of their argv[0]. The checker CLI misbehaves when two
// instances share its data directory, so stale ones are removed before a
// new session starts.
package reaper

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultProcRoot is where the process table is read from.
const DefaultProcRoot = "/proc"

// Reaper kills processes found under a procfs root.
type Reaper struct {
	procRoot string
	self     int
	kill     func(pid int) error
	logger   *slog.Logger
}

// Option configures a Reaper.
type Option func(*Reaper)

// WithProcRoot reads the process table from root instead of /proc.
func WithProcRoot(root string) Option {
	return func(r *Reaper) { r.procRoot = root }
}

// WithKillFunc replaces the function used to kill a pid.
func WithKillFunc(kill func(pid int) error) Option {
	return func(r *Reaper) { r.kill = kill }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reaper) { r.logger = logger }
}

// New creates a Reaper that sends SIGKILL.
func New(opts ...Option) *Reaper {
	r := &Reaper{
		procRoot: DefaultProcRoot,
		self:     os.Getpid(),
		kill:     killPID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return r
}

// Find returns the pids whose argv[0] base name equals name. The calling
// process is never included. Processes that vanish mid-scan are skipped.
func (r *Reaper) Find(name string) ([]int, error) {
	entries, err := os.ReadDir(r.procRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read process table: %w", err)
	}

	var pids []int
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid == r.self {
			continue
		}
		cmdline, err := os.ReadFile(filepath.Join(r.procRoot, e.Name(), "cmdline"))
		if err != nil {
			continue
		}
		if argv0Base(cmdline) == name {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

// KillByName kills every process Find reports for name and returns how
// many were signalled. A process that exits before it is signalled is not
// an error.
func (r *Reaper) KillByName(name string) (int, error) {
	pids, err := r.Find(name)
	if err != nil {
		return 0, err
	}

	killed := 0
	var errs []error
	for _, pid := range pids {
		if err := r.kill(pid); err != nil {
			if errors.Is(err, os.ErrProcessDone) || errors.Is(err, fs.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("pid %d: %w", pid, err))
			continue
		}
		killed++
		r.logger.Debug("killed stale instance", "name", name, "pid", pid)
	}
	return killed, errors.Join(errs...)
}

func killPID(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

// argv0Base returns the base name of the first NUL-separated field.
func argv0Base(cmdline []byte) string {
	if i := bytes.IndexByte(cmdline, 0); i >= 0 {
		cmdline = cmdline[:i]
	}
	if len(cmdline) == 0 {
		return ""
	}
	return filepath.Base(string(cmdline))
}
