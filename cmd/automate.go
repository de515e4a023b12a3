package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var noStartFlag bool

var automateCmd = &cobra.Command{
	Use:   "automate",
	Short: "Install, create a wallet and start the service",
	Long: `Run the full setup: the install script, wallet creation and finally
'systemctl start' for the checker unit.

Wallet creation follows the rules of create-wallet, including --force.

Examples:
  checkerctl automate
  checkerctl automate --force --no-start`,
	Args: cobra.NoArgs,
	RunE: runAutomate,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	automateCmd.Flags().BoolVarP(&forceFlag, "force", "f", false,
		"Replace an existing wallet file without asking")
	automateCmd.Flags().BoolVar(&noStartFlag, "no-start", false,
		"Do not start the service at the end")
	rootCmd.AddCommand(automateCmd)
}

func runAutomate(cmd *cobra.Command, args []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "[1/3] install")
	if err := runInstall(cmd, args); err != nil {
		return fmt.Errorf("automation failed: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "[2/3] create wallet")
	if err := createWallet(cmd, a, forceFlag); err != nil {
		if !errors.Is(err, errWalletKept) {
			return fmt.Errorf("automation failed: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Keeping existing wallet")
	}

	if noStartFlag {
		fmt.Fprintln(cmd.ErrOrStderr(), "[3/3] start service (skipped)")
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "[3/3] start service")
	if err := a.service.Start(cmd.Context()); err != nil {
		return fmt.Errorf("automation failed: %w", err)
	}
	a.printer(cmd.ErrOrStderr()).OK("automation completed")
	return nil
}
