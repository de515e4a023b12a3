package cmd

import (
	"github.com/spf13/cobra"

	"github.com/checkerctl/checkerctl/internal/report"
	"github.com/checkerctl/checkerctl/internal/service"
	"github.com/checkerctl/checkerctl/internal/session"
)

var statusFormatFlag string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report checker binary, wallet and service state",
	Long: `Report whether the checker CLI is installed, whether a complete wallet
is stored and what state the systemd unit is in. No key material is
printed and the checker is not started.

Formats:
  text   Human-readable output (default)
  json   Compact JSON to stdout

Examples:
  checkerctl status
  checkerctl status --format json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	statusCmd.Flags().StringVar(&statusFormatFlag, "format", "text", "Output format: text, json")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(statusFormatFlag)
	if err != nil {
		return err
	}
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	st := report.Status{
		Executable: report.Executable{Path: a.cfg.Executable, Present: true},
	}
	if err := session.CheckExecutable(a.cfg.Executable); err != nil {
		st.Executable.Present = false
		st.Executable.Problem = err.Error()
	}
	if st.Wallet, err = a.wallet.Check(); err != nil {
		return err
	}
	st.Service = serviceReport(cmd, a)

	if format == report.FormatJSON {
		return report.WriteJSON(cmd.OutOrStdout(), st)
	}
	report.WriteStatus(a.printer(cmd.OutOrStdout()), st)
	return nil
}

func serviceReport(cmd *cobra.Command, a *app) report.Service {
	state := a.service.State(cmd.Context())
	return report.Service{
		Unit:   a.service.Unit(),
		State:  state,
		Active: state == service.StateActive,
	}
}
