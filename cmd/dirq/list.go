package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every visible element identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			traceID(cmd, flags)
			q, err := openQueue(flags)
			if err != nil {
				return err
			}
			if err := q.First(); err != nil {
				return err
			}
			for {
				id, ok, err := q.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
		},
	}
	return cmd
}
