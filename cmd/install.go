package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var installScriptFlag string

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run the vendor install script",
	Long: `Run the checker's install script with bash from its own directory.

The script unpacks the checker and registers the aethir-checker systemd
unit. Its output is printed after it finishes.

Examples:
  checkerctl install
  checkerctl install --script /opt/AethirCheckerCLI-linux/install.sh`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	installCmd.Flags().StringVar(&installScriptFlag, "script", "",
		"Install script path (overrides install_script in the config)")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	script := a.cfg.InstallScript
	if installScriptFlag != "" {
		script = installScriptFlag
	}

	out := a.printer(cmd.ErrOrStderr())
	fmt.Fprintf(cmd.ErrOrStderr(), "Running %s\n", script)

	res, err := a.provisioner.Install(cmd.Context(), script)
	if res != nil {
		if s := strings.TrimRight(res.Stdout, "\n"); s != "" {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		if err != nil {
			if s := strings.TrimRight(res.Stderr, "\n"); s != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), s)
			}
		}
	}
	if err != nil {
		out.Fail("installation failed")
		return err
	}
	out.OK("installation completed")
	return nil
}
