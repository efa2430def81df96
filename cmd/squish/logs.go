package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCommand(cctx *commandContext) *cobra.Command {
	var follow bool
	var since int64

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print buffered encoder output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cctx.client()
			if err != nil {
				return err
			}

			if follow {
				return client.followLogs(cmd.Context(), since, cmd.OutOrStdout())
			}

			lines, err := client.logs(since)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new lines as they arrive")
	cmd.Flags().Int64Var(&since, "since", 0, "Only lines with a sequence number greater than this")
	return cmd
}
