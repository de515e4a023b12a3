package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/checkerctl/checkerctl/internal/report"
	"github.com/checkerctl/checkerctl/internal/script"
)

var (
	debugScriptFlag string
	debugDryRunFlag bool
	debugFormatFlag string
)

var debugCmd = &cobra.Command{
	Use:   "debug-cli",
	Short: "Run a script against the checker and print everything it said",
	Long: `Run a script against the checker CLI and print the raw transcript, the
diagnostic output and how the session ended. Nothing is extracted or
saved.

--script takes a built-in script name or a YAML file. With --dry-run the
script is only printed as text with its waits and worst-case duration.

Built-in scripts:
  ` + strings.Join(script.BuiltinNames(), "\n  ") + `

Examples:
  checkerctl debug-cli
  checkerctl debug-cli --script license-summary
  checkerctl debug-cli --script ./probe.yaml --dry-run`,
	Args: cobra.NoArgs,
	RunE: runDebug,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	debugCmd.Flags().StringVarP(&debugScriptFlag, "script", "s", script.WalletCreate,
		"Built-in script name or script file")
	debugCmd.Flags().BoolVar(&debugDryRunFlag, "dry-run", false, "Preview the script without running it")
	debugCmd.Flags().StringVar(&debugFormatFlag, "format", "text", "Output format: text, json")
	rootCmd.AddCommand(debugCmd)
}

func runDebug(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(debugFormatFlag)
	if err != nil {
		return err
	}
	s, err := script.Resolve(debugScriptFlag)
	if err != nil {
		return err
	}

	if debugDryRunFlag {
		return script.FormatDryRunReport(script.BuildDryRunReport(s), cmd.OutOrStdout())
	}

	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Running %s against %s\n", s.Meta.Name, a.cfg.Executable)

	res, runErr := a.driver.Run(cmd.Context(), a.cfg.Executable, s)
	view := report.NewSession(s.Meta.Name, res, runErr)
	if format == report.FormatJSON {
		if err := report.WriteJSON(cmd.OutOrStdout(), view); err != nil {
			return err
		}
	} else {
		report.WriteSession(a.printer(cmd.OutOrStdout()), view)
	}
	if runErr != nil {
		return fmt.Errorf("session failed: %w", runErr)
	}
	return nil
}
