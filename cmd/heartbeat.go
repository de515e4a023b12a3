package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/checkerctl/checkerctl/internal/report"
)

var (
	heartbeatFormatFlag   string
	heartbeatWatchFlag    bool
	heartbeatIntervalFlag time.Duration
	heartbeatCountFlag    int
	heartbeatNoApprove    bool
)

var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "Report wallet, license and service health",
	Long: `Export the wallet's public key, read the license summary and query the
service state. Pending licenses are approved and the summary is read
again, unless auto_approve is off or --no-approve is given.

With --watch the report repeats every --interval until interrupted or
--count reports were written. A heartbeat that fails is reported with
status "error"; it does not stop watch mode.

Formats:
  text   Human-readable output (default)
  json   One compact JSON object per heartbeat

Examples:
  checkerctl heartbeat
  checkerctl heartbeat --format json
  checkerctl heartbeat --watch --interval 10m`,
	Args: cobra.NoArgs,
	RunE: runHeartbeat,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	heartbeatCmd.Flags().StringVar(&heartbeatFormatFlag, "format", "text", "Output format: text, json")
	heartbeatCmd.Flags().BoolVarP(&heartbeatWatchFlag, "watch", "w", false, "Repeat the heartbeat")
	heartbeatCmd.Flags().DurationVar(&heartbeatIntervalFlag, "interval", 0,
		"Time between heartbeats in watch mode (default heartbeat.interval from the config)")
	heartbeatCmd.Flags().IntVar(&heartbeatCountFlag, "count", 0, "Stop watch mode after this many heartbeats (0 = no limit)")
	heartbeatCmd.Flags().BoolVar(&heartbeatNoApprove, "no-approve", false, "Do not approve pending licenses")
	rootCmd.AddCommand(heartbeatCmd)
}

func runHeartbeat(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(heartbeatFormatFlag)
	if err != nil {
		return err
	}
	if heartbeatCountFlag < 0 {
		return fmt.Errorf("--count must be non-negative, got %d", heartbeatCountFlag)
	}
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	write := func(h report.Heartbeat) error {
		if format == report.FormatJSON {
			return report.WriteJSON(cmd.OutOrStdout(), h)
		}
		report.WriteHeartbeat(a.printer(cmd.OutOrStdout()), h)
		return nil
	}

	if !heartbeatWatchFlag {
		h := a.heartbeat(cmd)
		if err := write(h); err != nil {
			return err
		}
		if h.Status != report.HeartbeatRunning {
			return errors.New("heartbeat failed")
		}
		return nil
	}

	interval := heartbeatIntervalFlag
	if interval <= 0 {
		interval = a.cfg.Heartbeat.Interval.Std()
	}
	if interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", interval)
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for n := 0; heartbeatCountFlag == 0 || n < heartbeatCountFlag; n++ {
		if err := limiter.Wait(cmd.Context()); err != nil {
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		}
		if err := write(a.heartbeat(cmd)); err != nil {
			return err
		}
	}
	return nil
}

// heartbeat runs one report. Failures are collected into the report
// rather than returned so watch mode keeps going.
func (a *app) heartbeat(cmd *cobra.Command) report.Heartbeat {
	h := report.Heartbeat{Status: report.HeartbeatRunning, CheckedAt: time.Now().UTC()}
	fail := func(err error) {
		a.logger.Error("heartbeat check failed", "error", err)
		h.Status = report.HeartbeatError
		h.Errors = append(h.Errors, err.Error())
	}

	if kp, err := a.exportKeys(cmd); err != nil {
		fail(err)
	} else {
		h.PublicKey = kp.PublicKey
		if stored, err := a.wallet.Load(); err == nil && stored.PublicKey != kp.PublicKey {
			fail(fmt.Errorf("checker wallet %s does not match %s", kp.PublicKey, a.wallet.Path()))
		}
	}

	if summary, err := a.licenseSummary(cmd); err != nil {
		fail(err)
	} else {
		h.Licenses = &summary
		if summary.Pending > 0 && a.cfg.Heartbeat.AutoApprove && !heartbeatNoApprove {
			a.logger.Info("approving pending licenses", "pending", summary.Pending)
			if err := a.approveAll(cmd); err != nil {
				fail(err)
			} else {
				h.Approved = true
				if updated, err := a.licenseSummary(cmd); err != nil {
					fail(err)
				} else {
					h.Licenses = &updated
				}
			}
		}
	}

	h.Service = serviceReport(cmd, a)
	return h
}
