package main

import "github.com/spf13/cobra"

func newRemoveCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a locked element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traceID(cmd, flags)
			q, err := openQueue(flags)
			if err != nil {
				return err
			}
			return q.Remove(args[0])
		},
	}
}
