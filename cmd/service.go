package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Control the checker's systemd unit",
	Long: `Start, stop or health-check the systemd unit registered by the install
script (aethir-checker unless unit is set in the config).`,
}

var serviceStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the unit",
	Args:  cobra.NoArgs,
	RunE:  runServiceStart,
}

var serviceStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the unit",
	Args:  cobra.NoArgs,
	RunE:  runServiceStop,
}

var serviceHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Exit 0 when the unit is active, 1 otherwise",
	Long: `Print the unit's state. The exit status is 0 only when the unit is
active, so the command can serve as a health probe.`,
	Args: cobra.NoArgs,
	RunE: runServiceHealth,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	serviceCmd.AddCommand(serviceStartCmd, serviceStopCmd, serviceHealthCmd)
	rootCmd.AddCommand(serviceCmd)
}

func runServiceStart(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	if err := a.service.Start(cmd.Context()); err != nil {
		return err
	}
	a.printer(cmd.ErrOrStderr()).OK("started %s", a.service.Unit())
	return nil
}

func runServiceStop(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	if err := a.service.Stop(cmd.Context()); err != nil {
		return err
	}
	a.printer(cmd.ErrOrStderr()).OK("stopped %s", a.service.Unit())
	return nil
}

func runServiceHealth(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	svc := serviceReport(cmd, a)
	fmt.Fprintln(cmd.OutOrStdout(), svc.State)
	if !svc.Active {
		return fmt.Errorf("service %s is %s", svc.Unit, svc.State)
	}
	return nil
}

