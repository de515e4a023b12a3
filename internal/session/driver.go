// Package session drives an interactive line-oriented program through a
// script: it writes each line to the child's stdin, paces the next line by
// the line's wait policy, drains stdout and stderr concurrently, and
// terminates the child's whole process group on every exit path.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/checkerctl/checkerctl/internal/matcher"
	"github.com/checkerctl/checkerctl/internal/script"
)

// Defaults applied by NewDriver to zero Config fields.
const (
	DefaultTimeout          = 2 * time.Minute
	DefaultExitWait         = 10 * time.Second
	DefaultTerminationGrace = 500 * time.Millisecond
	DefaultReaderJoin       = 5 * time.Second
)

// Config controls the behavior of Driver.
type Config struct {
	// Timeout bounds the whole session, measured from spawn.
	Timeout time.Duration

	// ExitWait bounds the wait for the child to exit after stdin is closed.
	ExitWait time.Duration

	// TerminationGrace is the pause between SIGTERM and SIGKILL.
	TerminationGrace time.Duration

	// ReaderJoin bounds the wait for the output readers after the child
	// is gone. On expiry the read ends are closed.
	ReaderJoin time.Duration

	// Dir is the child's working directory. Empty means the caller's.
	Dir string

	// Env sets extra variables in the child, replacing inherited ones.
	Env map[string]string

	// EnvDeny lists glob patterns of inherited variables to drop.
	EnvDeny []string

	Logger *slog.Logger
}

// Result is the outcome of one session.
type Result struct {
	ID         string
	Transcript *Transcript
	// Success is true when every line was sent and the child then exited
	// on its own. The exit code does not affect it.
	Success bool
	// Missed lists the markers that did not show up within their max wait.
	Missed   []string
	Duration time.Duration
}

// Driver runs scripts against an executable. A Driver holds no per-session
// state and may be shared.
type Driver struct {
	cfg    Config
	logger *slog.Logger
}

// NewDriver creates a Driver, filling zero Config fields with defaults.
func NewDriver(cfg Config) *Driver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ExitWait <= 0 {
		cfg.ExitWait = DefaultExitWait
	}
	if cfg.TerminationGrace <= 0 {
		cfg.TerminationGrace = DefaultTerminationGrace
	}
	if cfg.ReaderJoin <= 0 {
		cfg.ReaderJoin = DefaultReaderJoin
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Driver{cfg: cfg, logger: logger}
}

// CheckExecutable verifies that path names an existing regular file with
// an execute bit.
func CheckExecutable(path string) error {
	if path == "" {
		return fmt.Errorf("%w: executable path is empty", ErrPrecondition)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrPrecondition, path)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s is not executable", ErrPrecondition, path)
	}
	return nil
}

// Run launches executable, plays s against it and returns the sealed
// transcript.
//
// ErrPrecondition and ErrSpawn are returned without a Result. ErrStream,
// ErrTimeout and context errors are returned together with the partial
// Result captured up to that point.
func (d *Driver) Run(ctx context.Context, executable string, s *script.Script) (*Result, error) {
	if err := CheckExecutable(executable); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	markers := make([]*matcher.Marker, len(s.Lines))
	for i, line := range s.Lines {
		if line.Wait.Kind() != script.WaitMarker {
			continue
		}
		m, err := line.Wait.CompileMarker()
		if err != nil {
			return nil, fmt.Errorf("invalid script: line %d: %w", i, err)
		}
		markers[i] = m
	}

	id := uuid.NewString()
	logger := d.logger.With("session", id, "script", s.Meta.Name)
	start := time.Now()

	runCtx, cancel := context.WithTimeoutCause(ctx, d.cfg.Timeout, ErrTimeout)
	defer cancel()

	c, err := d.start(executable, id, logger)
	if err != nil {
		return nil, err
	}
	defer c.release()
	// Unblocks a write stuck on a full stdin pipe once the session ends.
	stopClose := context.AfterFunc(runCtx, func() { _ = c.stdin.Close() })
	defer stopClose()
	logger.Debug("target started", "executable", executable, "pid", c.cmd.Process.Pid)

	completion := CompletionNormal
	var runErr error

	missed, err := d.converse(runCtx, logger, c, s, markers)
	if err == nil {
		_ = c.stdin.Close()
		err = c.awaitExit(runCtx, d.cfg.ExitWait)
	}
	if err != nil {
		completion, runErr = classify(err)
		logger.Warn("terminating target", "completion", completion, "error", runErr)
		c.terminate(d.cfg.TerminationGrace, d.cfg.ReaderJoin)
	}

	lines, stderr := c.join(d.cfg.ReaderJoin, logger)

	exitCode := -1
	if c.exited {
		exitCode = ExitCodeFromError(c.waitErr)
	}

	res := &Result{
		ID:         id,
		Transcript: NewTranscript(lines, stderr, completion, exitCode),
		Success:    completion == CompletionNormal,
		Missed:     missed,
		Duration:   time.Since(start),
	}
	logger.Debug("session finished",
		"completion", completion,
		"exit_code", exitCode,
		"lines", len(lines),
		"missed", len(missed),
		"duration", res.Duration)

	return res, runErr
}

// classify maps the error that ended a conversation to a completion and
// the error surfaced to the caller.
func classify(err error) (Completion, error) {
	switch {
	case errors.Is(err, ErrStream):
		return CompletionForced, err
	case errors.Is(err, ErrTimeout):
		return CompletionTimeout, err
	case errors.Is(err, context.DeadlineExceeded):
		return CompletionTimeout, fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return CompletionForced, fmt.Errorf("session cancelled: %w", err)
	}
}

// converse writes each script line and applies its wait policy. It returns
// the markers that were not seen in time.
func (d *Driver) converse(ctx context.Context, logger *slog.Logger, c *child, s *script.Script, markers []*matcher.Marker) ([]string, error) {
	var missed []string
	for i, line := range s.Lines {
		if ctx.Err() != nil {
			return missed, context.Cause(ctx)
		}

		offset := c.out.mark()
		if _, err := io.WriteString(c.stdin, line.Send+"\n"); err != nil {
			if ctx.Err() != nil {
				return missed, context.Cause(ctx)
			}
			return missed, fmt.Errorf("%w: line %d: %w", ErrStream, i, err)
		}
		logger.Debug("sent", "line", i, "send", line.Send)

		switch line.Wait.Kind() {
		case script.WaitDelay:
			if err := sleep(ctx, time.Duration(line.Wait.Delay)); err != nil {
				return missed, err
			}
		case script.WaitMarker:
			seen, err := waitMarker(ctx, c.out, offset, markers[i], line.Wait.Timeout())
			if err != nil {
				return missed, err
			}
			if !seen {
				missed = append(missed, line.Wait.Marker)
				logger.Warn("marker not seen, continuing",
					"line", i,
					"marker", markers[i].String(),
					"max_wait", line.Wait.Timeout())
			}
		}
	}
	return missed, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// waitMarker blocks until m matches the output captured after offset, the
// stream ends, or maxWait elapses.
func waitMarker(ctx context.Context, out *capture, offset int, m *matcher.Marker, maxWait time.Duration) (bool, error) {
	timer := time.NewTimer(maxWait)
	defer timer.Stop()
	for {
		text, changed, eof := out.since(offset)
		if m.Match(text) {
			return true, nil
		}
		if eof {
			return false, nil
		}
		select {
		case <-changed:
		case <-timer.C:
			return false, nil
		case <-ctx.Done():
			return false, context.Cause(ctx)
		}
	}
}

// child is one running target and the goroutines attached to it.
type child struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdoutR *os.File
	stderrR *os.File
	out     *capture
	errBuf  *lockedBuffer
	readers sync.WaitGroup
	done    chan error

	exited  bool
	waitErr error
}

func (d *Driver) start(executable, id string, logger *slog.Logger) (*child, error) {
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %w", ErrSpawn, err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeFiles(stdoutR, stdoutW)
		return nil, fmt.Errorf("%w: stderr pipe: %w", ErrSpawn, err)
	}

	cmd := exec.Command(executable) //nolint:gosec // executable is the configured target
	cmd.Dir = d.cfg.Dir
	cmd.Env = BuildChildEnv(os.Environ(), d.cfg.EnvDeny, d.cfg.Env, id)
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	setProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		closeFiles(stdoutR, stdoutW, stderrR, stderrW)
		return nil, fmt.Errorf("%w: stdin pipe: %w", ErrSpawn, err)
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		closeFiles(stdoutR, stdoutW, stderrR, stderrW)
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	// The child holds its own copies of the write ends.
	closeFiles(stdoutW, stderrW)

	c := &child{
		cmd:     cmd,
		stdin:   stdin,
		stdoutR: stdoutR,
		stderrR: stderrR,
		out:     newCapture(logger),
		errBuf:  &lockedBuffer{},
		done:    make(chan error, 1),
	}
	c.readers.Add(2)
	go func() {
		defer c.readers.Done()
		c.out.drain(stdoutR)
	}()
	go func() {
		defer c.readers.Done()
		_, _ = io.Copy(c.errBuf, stderrR)
	}()
	go func() { c.done <- cmd.Wait() }()

	return c, nil
}

// awaitExit waits for the child to exit after stdin was closed.
func (c *child) awaitExit(ctx context.Context, bound time.Duration) error {
	timer := time.NewTimer(bound)
	defer timer.Stop()
	select {
	case err := <-c.done:
		c.exited = true
		c.waitErr = err
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: target still running %s after end of input", ErrTimeout, bound)
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// terminate sends SIGTERM to the group, then SIGKILL after grace. It waits
// at most bound for the kill to be observed.
func (c *child) terminate(grace, bound time.Duration) {
	if !c.exited {
		interruptGroup(c.cmd.Process)
		select {
		case err := <-c.done:
			c.exited = true
			c.waitErr = err
		case <-time.After(grace):
			killGroup(c.cmd.Process)
			select {
			case err := <-c.done:
				c.exited = true
				c.waitErr = err
			case <-time.After(bound):
			}
		}
	}
	// Survivors in the group, if any.
	killGroup(c.cmd.Process)
}

// join waits for the readers up to bound, then seals the capture.
func (c *child) join(bound time.Duration, logger *slog.Logger) ([]string, string) {
	joined := make(chan struct{})
	go func() {
		c.readers.Wait()
		close(joined)
	}()

	timer := time.NewTimer(bound)
	defer timer.Stop()
	select {
	case <-joined:
	case <-timer.C:
		logger.Warn("output readers still running, closing streams", "after", bound)
		closeFiles(c.stdoutR, c.stderrR)
	}
	return c.out.seal(), c.errBuf.String()
}

// release guarantees the child and its streams are gone.
func (c *child) release() {
	if !c.exited {
		killGroup(c.cmd.Process)
	}
	_ = c.stdin.Close()
	closeFiles(c.stdoutR, c.stderrR)
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
