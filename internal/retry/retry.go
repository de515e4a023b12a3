// Package retry wraps single status queries against the checker CLI in a
// bounded, strictly sequential retry loop.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/checkerctl/checkerctl/internal/script"
	"github.com/checkerctl/checkerctl/internal/session"
)

// ErrExhausted is returned when every attempt failed.
var ErrExhausted = errors.New("all attempts failed")

// errNoOutput and errNotFound describe attempt failures that carry no
// driver error.
var (
	errNoOutput = errors.New("target produced no output")
	errNotFound = errors.New("expected value not found in output")
)

// Defaults applied by NewQuerier to zero Policy fields.
const (
	DefaultAttempts       = 3
	DefaultBackoff        = 2 * time.Second
	DefaultAttemptTimeout = 30 * time.Second
	DefaultSettle         = 500 * time.Millisecond
)

// Runner runs one session. *session.Driver implements it.
type Runner interface {
	Run(ctx context.Context, executable string, s *script.Script) (*session.Result, error)
}

// Reaper kills running instances of a program by name. It returns how
// many processes were signalled.
type Reaper interface {
	KillByName(name string) (int, error)
}

// Policy bounds a query.
type Policy struct {
	Attempts       int
	Backoff        time.Duration
	AttemptTimeout time.Duration
	// Settle is the pause after stale instances were killed.
	Settle time.Duration
}

// Querier runs queries under a Policy.
type Querier struct {
	runner Runner
	reaper Reaper
	policy Policy
	logger *slog.Logger
}

// NewQuerier creates a Querier. reaper may be nil to skip the cleanup of
// stale instances.
func NewQuerier(runner Runner, reaper Reaper, policy Policy, logger *slog.Logger) *Querier {
	if policy.Attempts <= 0 {
		policy.Attempts = DefaultAttempts
	}
	if policy.Backoff <= 0 {
		policy.Backoff = DefaultBackoff
	}
	if policy.AttemptTimeout <= 0 {
		policy.AttemptTimeout = DefaultAttemptTimeout
	}
	if policy.Settle <= 0 {
		policy.Settle = DefaultSettle
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Querier{runner: runner, reaper: reaper, policy: policy, logger: logger}
}

// Policy returns the effective policy.
func (q *Querier) Policy() Policy {
	return q.policy
}

// Query runs s against executable until extract finds a value or the
// attempt budget is spent. An attempt succeeds only when the driver
// reports no error, the transcript has at least one line and extract
// returns ok. On exhaustion the zero T and ErrExhausted, wrapping the last
// attempt's cause, are returned.
func Query[T any](ctx context.Context, q *Querier, executable string, s *script.Script, extract func(string) (T, bool)) (T, *session.Result, error) {
	var zero T

	if err := q.reap(ctx, executable); err != nil {
		return zero, nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= q.policy.Attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, q.policy.Backoff); err != nil {
				return zero, nil, err
			}
		}

		value, res, err := runAttempt(ctx, q, executable, s, extract)
		if err == nil {
			q.logger.Debug("query succeeded", "script", s.Meta.Name, "attempt", attempt)
			return value, res, nil
		}

		// Nothing later attempts could fix.
		if errors.Is(err, session.ErrPrecondition) {
			return zero, nil, err
		}

		lastErr = err
		q.logger.Warn("query attempt failed",
			"script", s.Meta.Name,
			"attempt", attempt,
			"of", q.policy.Attempts,
			"error", err)

		if ctx.Err() != nil {
			return zero, nil, ctx.Err()
		}
	}

	return zero, nil, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, q.policy.Attempts, lastErr)
}

func runAttempt[T any](ctx context.Context, q *Querier, executable string, s *script.Script, extract func(string) (T, bool)) (T, *session.Result, error) {
	var zero T

	attemptCtx, cancel := context.WithTimeout(ctx, q.policy.AttemptTimeout)
	defer cancel()

	res, err := q.runner.Run(attemptCtx, executable, s)
	if err != nil {
		return zero, nil, err
	}
	if res == nil || res.Transcript == nil || res.Transcript.Len() == 0 {
		return zero, nil, errNoOutput
	}
	value, ok := extract(res.Transcript.Text())
	if !ok {
		return zero, nil, errNotFound
	}
	return value, res, nil
}

// reap kills stale instances of the target and lets the system settle.
func (q *Querier) reap(ctx context.Context, executable string) error {
	if q.reaper == nil {
		return nil
	}
	name := filepath.Base(executable)
	killed, err := q.reaper.KillByName(name)
	if err != nil {
		q.logger.Warn("could not stop running instances", "name", name, "killed", killed, "error", err)
	}
	if killed == 0 {
		return nil
	}
	q.logger.Info("stopped running instances", "name", name, "count", killed)
	return sleep(ctx, q.policy.Settle)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
