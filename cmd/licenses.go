package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/checkerctl/checkerctl/internal/extract"
	"github.com/checkerctl/checkerctl/internal/report"
	"github.com/checkerctl/checkerctl/internal/retry"
	"github.com/checkerctl/checkerctl/internal/script"
)

var licensesFormatFlag string

var errApprovalUnconfirmed = errors.New("checker did not confirm the approval")

var licensesCmd = &cobra.Command{
	Use:   "licenses",
	Short: "Show the license counters of the burner wallet",
	Long: `Run 'aethir license summary' and report the counters it prints, along
with the derived online and offline totals and an overall status.

Stale checker instances are killed first. The query is retried a few
times when the checker prints nothing usable.

Examples:
  checkerctl licenses
  checkerctl licenses --format json`,
	Args: cobra.NoArgs,
	RunE: runLicenses,
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve all pending licenses",
	Long: `Run 'aethir license approve --all' and check that the checker confirmed
the approval.

Examples:
  checkerctl approve`,
	Args: cobra.NoArgs,
	RunE: runApprove,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	licensesCmd.Flags().StringVar(&licensesFormatFlag, "format", "text", "Output format: text, json")
	rootCmd.AddCommand(licensesCmd)
	rootCmd.AddCommand(approveCmd)
}

func runLicenses(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(licensesFormatFlag)
	if err != nil {
		return err
	}
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	summary, err := a.licenseSummary(cmd)
	if err != nil {
		return err
	}
	if format == report.FormatJSON {
		return report.WriteJSON(cmd.OutOrStdout(), summary)
	}
	report.WriteLicenses(a.printer(cmd.OutOrStdout()), summary)
	return nil
}

func runApprove(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	if err := a.approveAll(cmd); err != nil {
		return err
	}
	a.printer(cmd.ErrOrStderr()).OK("pending licenses approved")
	return nil
}

func (a *app) licenseSummary(cmd *cobra.Command) (extract.LicenseSummary, error) {
	summary, _, err := retry.Query(cmd.Context(), a.querier, a.cfg.Executable,
		script.MustBuiltin(script.LicenseSummary), extract.ExtractLicenseSummary)
	if err != nil {
		return extract.LicenseSummary{}, fmt.Errorf("failed to read license summary: %w", err)
	}
	return summary, nil
}

// approveAll runs a single approval session. Approval changes checker
// state, so it is neither retried nor preceded by the stale-instance reap.
func (a *app) approveAll(cmd *cobra.Command) error {
	res, err := a.driver.Run(cmd.Context(), a.cfg.Executable, script.MustBuiltin(script.LicenseApprove))
	if err != nil {
		return fmt.Errorf("failed to approve licenses: %w", err)
	}
	if !extract.ApprovalConfirmed(res.Transcript.Text()) {
		return fmt.Errorf("failed to approve licenses: %w", errApprovalUnconfirmed)
	}
	return nil
}

func (a *app) exportKeys(cmd *cobra.Command) (extract.KeyPair, error) {
	kp, _, err := retry.Query(cmd.Context(), a.querier, a.cfg.Executable,
		script.MustBuiltin(script.WalletExport), extract.ExtractKeyPair)
	if err != nil {
		return extract.KeyPair{}, fmt.Errorf("failed to export wallet keys: %w", err)
	}
	return kp, nil
}
