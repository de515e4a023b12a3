package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/checkerctl/checkerctl/internal/config"
	"github.com/checkerctl/checkerctl/internal/platform"
	"github.com/checkerctl/checkerctl/internal/provision"
	"github.com/checkerctl/checkerctl/internal/reaper"
	"github.com/checkerctl/checkerctl/internal/report"
	"github.com/checkerctl/checkerctl/internal/retry"
	"github.com/checkerctl/checkerctl/internal/service"
	"github.com/checkerctl/checkerctl/internal/session"
	"github.com/checkerctl/checkerctl/internal/wallet"
)

// Seams replaced by tests.
var (
	newPlatform = platform.New
	newReaper   = func(logger *slog.Logger) retry.Reaper {
		return reaper.New(reaper.WithLogger(logger))
	}
	stdinIsTerminal = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd()))
	}
)

// app holds the collaborators shared by every command.
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	driver      *session.Driver
	querier     *retry.Querier
	wallet      *wallet.Store
	service     *service.Controller
	provisioner *provision.Provisioner
}

type appKey struct{}

// setupApp loads the config and stores the collaborators in the command's
// context.
func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	if executableFlag != "" {
		cfg.Executable = executableFlag
	}

	level := slog.LevelInfo
	if verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	a := newApp(cfg, logger)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey{}, a))
	return nil
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	plat := newPlatform()
	if !filepath.IsAbs(cfg.Executable) {
		if resolved, err := plat.Resolve(cfg.Executable); err == nil {
			cfg.Executable = resolved
		} else {
			logger.Debug("executable not resolved", "executable", cfg.Executable, "error", err)
		}
	}
	driver := session.NewDriver(session.Config{
		Timeout:          cfg.Session.Timeout.Std(),
		ExitWait:         cfg.Session.ExitWait.Std(),
		TerminationGrace: cfg.Session.TerminationGrace.Std(),
		ReaderJoin:       cfg.Session.ReaderJoin.Std(),
		Dir:              cfg.ExecutableDir(),
		Env:              cfg.Session.Env,
		EnvDeny:          cfg.Session.EnvDeny,
		Logger:           logger,
	})
	querier := retry.NewQuerier(driver, newReaper(logger), retry.Policy{
		Attempts:       cfg.Retry.Attempts,
		Backoff:        cfg.Retry.Backoff.Std(),
		AttemptTimeout: cfg.Retry.AttemptTimeout.Std(),
		Settle:         cfg.Retry.Settle.Std(),
	}, logger)

	return &app{
		cfg:         cfg,
		logger:      logger,
		driver:      driver,
		querier:     querier,
		wallet:      wallet.NewStore(cfg.Wallet),
		service:     service.New(plat, cfg.Unit, logger),
		provisioner: provision.New(plat, logger),
	}
}

var errNoApp = errors.New("command is not attached to checkerctl")

func appFrom(cmd *cobra.Command) (*app, error) {
	if ctx := cmd.Context(); ctx != nil {
		if a, ok := ctx.Value(appKey{}).(*app); ok {
			return a, nil
		}
	}
	return nil, errNoApp
}

// printer returns a Printer for w, coloured when the config and w allow.
func (a *app) printer(w io.Writer) *report.Printer {
	f, _ := w.(*os.File)
	return report.NewPrinter(w, report.ColorEnabled(a.cfg.Color, f))
}
