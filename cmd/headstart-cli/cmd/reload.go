package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/headstart/cmd/headstart-cli/internal/output"
)

func newReloadCmd(opts *rootOptions) *cobra.Command {
	var async bool
	var format string

	reloadCmd := &cobra.Command{
		Use:   "reload",
		Short: "Reload content, templates and extensions on a running server",
		Long: `Runs a reload cycle on the server and prints its report. The command
fails when any reload callback failed. With --async the request is only
queued.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.CheckFormat(format); err != nil {
				return err
			}
			c := opts.client()
			if async {
				if err := c.RequestReload(cmd.Context()); err != nil {
					return fmt.Errorf("request reload: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Reload requested")
				return nil
			}

			report, err := c.Reload(cmd.Context())
			if report != nil {
				if perr := output.Report(cmd.OutOrStdout(), format, report); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	reloadCmd.Flags().BoolVar(&async, "async", false, "Queue the reload and return immediately")
	reloadCmd.Flags().StringVarP(&format, "format", "f", output.FormatTable, "Output format (table, json)")
	return reloadCmd
}
