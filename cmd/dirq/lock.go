package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLockCommand(flags *rootFlags) *cobra.Command {
	var permissive bool

	cmd := &cobra.Command{
		Use:   "lock <id>",
		Short: "Acquire an element's lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traceID(cmd, flags)
			q, err := openQueue(flags)
			if err != nil {
				return err
			}
			ok, err := q.Lock(args[0], permissive)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
	cmd.Flags().BoolVar(&permissive, "permissive", false, "return false instead of an error when the element no longer exists")
	return cmd
}

func newUnlockCommand(flags *rootFlags) *cobra.Command {
	var permissive bool

	cmd := &cobra.Command{
		Use:   "unlock <id>",
		Short: "Release an element's lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traceID(cmd, flags)
			q, err := openQueue(flags)
			if err != nil {
				return err
			}
			ok, err := q.Unlock(args[0], permissive)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
	cmd.Flags().BoolVar(&permissive, "permissive", true, "return false instead of an error when the element is not locked")
	return cmd
}

func newTouchCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "touch <id>",
		Short: "Refresh a locked element's heartbeat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traceID(cmd, flags)
			q, err := openQueue(flags)
			if err != nil {
				return err
			}
			return q.Touch(args[0])
		},
	}
	return cmd
}
