// Package cmd implements the checkerctl Cobra command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version, Commit, and Date are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configFlag     string
	verboseFlag    bool
	executableFlag string
)

var rootCmd = &cobra.Command{
	Use:   "checkerctl",
	Short: "Drive the Aethir checker CLI unattended",
	Long: `checkerctl - Drive the Aethir checker CLI unattended

The checker CLI is an interactive program with no machine-readable
interface. checkerctl plays scripted conversations against it, waits for
its prompts, captures everything it prints and extracts wallet keys and
license counters from the output.

Examples:
  # Install the checker and create a burner wallet
  checkerctl automate

  # Report wallet, binary and service state
  checkerctl status

  # Query license counters as JSON
  checkerctl licenses --format json

  # Run a health report every 10 minutes
  checkerctl heartbeat --watch --interval 10m

  # See exactly what the checker prints for a script
  checkerctl debug-cli --script my-script.yaml`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupApp,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context, which stops any running session.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() { //nolint:gochecknoinits
	rootCmd.SetVersionTemplate(fmt.Sprintf("checkerctl version {{.Version}} (commit: %s, built: %s)\n", Commit, Date))
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Config file (default $CHECKERCTL_CONFIG or ~/.checkerctl/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Log every line the checker prints")
	rootCmd.PersistentFlags().StringVar(&executableFlag, "executable", "",
		"Path to the checker CLI (overrides config and $CHECKERCTL_EXECUTABLE)")
}
