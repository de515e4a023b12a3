package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/checkerctl/checkerctl/internal/extract"
	"github.com/checkerctl/checkerctl/internal/script"
	"github.com/checkerctl/checkerctl/internal/session"
	"github.com/checkerctl/checkerctl/internal/wallet"
)

var forceFlag bool

var createWalletCmd = &cobra.Command{
	Use:   "create-wallet",
	Short: "Create a burner wallet and save its keys",
	Long: `Accept the checker's terms, create a wallet, export its keys and save
them to the wallet file (mode 0600).

The service is stopped first since the checker cannot share its data
directory with a running instance. An existing wallet file is kept unless
--force is given or the replacement is confirmed on a terminal.

Examples:
  checkerctl create-wallet
  checkerctl create-wallet --force`,
	Args: cobra.NoArgs,
	RunE: runCreateWallet,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	createWalletCmd.Flags().BoolVarP(&forceFlag, "force", "f", false,
		"Replace an existing wallet file without asking")
	rootCmd.AddCommand(createWalletCmd)
}

// errWalletKept is returned when the user declined to replace the wallet.
var errWalletKept = errors.New("keeping existing wallet")

func runCreateWallet(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	err = createWallet(cmd, a, forceFlag)
	if errors.Is(err, errWalletKept) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Keeping existing wallet")
		return nil
	}
	return err
}

func createWallet(cmd *cobra.Command, a *app, force bool) error {
	out := a.printer(cmd.ErrOrStderr())

	overwrite := force
	if !force {
		exists, err := a.wallet.Exists()
		if err != nil {
			return err
		}
		if exists {
			out.Warn("wallet already exists at %s", a.wallet.Path())
			if !stdinIsTerminal() || !confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), "Create a new wallet?") {
				return errWalletKept
			}
			overwrite = true
		}
	}

	if err := session.CheckExecutable(a.cfg.Executable); err != nil {
		return fmt.Errorf("checker CLI not usable, run 'checkerctl install' first: %w", err)
	}

	if err := a.service.Stop(cmd.Context()); err != nil {
		a.logger.Debug("service not stopped before wallet setup", "error", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Creating wallet with %s\n", a.cfg.Executable)
	res, err := a.driver.Run(cmd.Context(), a.cfg.Executable, script.MustBuiltin(script.WalletCreate))
	if err != nil {
		return fmt.Errorf("wallet session failed: %w", err)
	}
	for _, m := range res.Missed {
		out.Warn("checker never printed %q", m)
	}

	kp, ok := extract.ExtractKeyPair(res.Transcript.Text())
	if !ok {
		return fmt.Errorf("no key pair in checker output (%d lines, run 'checkerctl debug-cli --script wallet-create' to inspect)",
			res.Transcript.Len())
	}
	if err := a.wallet.Save(kp, overwrite); err != nil {
		if errors.Is(err, wallet.ErrExists) {
			return fmt.Errorf("%w (use --force to replace it)", err)
		}
		return err
	}
	out.OK("wallet saved to %s", a.wallet.Path())
	out.Info("public key %s", kp.PublicKey)
	return nil
}

// confirm asks a yes/no question and reads one answer line from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
