package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPurgeCommand(flags *rootFlags) *cobra.Command {
	var maxTemp, maxLock time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Reclaim stale staging entries and lock markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			traceID(cmd, flags)
			q, err := openQueue(flags)
			if err != nil {
				return err
			}
			if err := q.Purge(maxTemp, maxLock); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "purge complete")
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxTemp, "max-temp-age", 5*time.Minute, "reclaim staged entries older than this")
	cmd.Flags().DurationVar(&maxLock, "max-lock-age", 10*time.Minute, "reclaim lock markers untouched longer than this")
	return cmd
}
