package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStartCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start encoding the next waiting job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cctx.client()
			if err != nil {
				return err
			}
			status, err := client.start()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if status.Busy {
				fmt.Fprintln(out, "encoding in progress")
			} else {
				fmt.Fprintln(out, "nothing to encode")
			}
			fmt.Fprintf(out, "waiting %d, done %d, failed %d\n", status.Waiting, status.Done, status.Failed)
			return nil
		},
	}
}
