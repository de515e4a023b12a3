package cmd

import (
	"github.com/spf13/cobra"

	"github.com/checkerctl/checkerctl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Long: `Print the configuration checkerctl would use: the config file merged
over the defaults, with environment variables and --executable applied.
The output is a valid config file.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	data, err := config.Encode(a.cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
