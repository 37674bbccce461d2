package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatsCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show queue statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			traceID(cmd, flags)
			q, err := openQueue(flags)
			if err != nil {
				return err
			}
			count, err := q.Count()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Queue Statistics")
			fmt.Fprintln(w, "================")
			fmt.Fprintf(w, "Directory:\t%s\n", flags.dir)
			fmt.Fprintf(w, "Flavor:\t%s\n", flags.flavor)
			fmt.Fprintf(w, "Visible elements:\t%d\n", count)
			return w.Flush()
		},
	}
	return cmd
}
