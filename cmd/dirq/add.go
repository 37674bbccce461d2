package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pavelsr/dirq"
)

func newAddCommand(flags *rootFlags) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "add [payload]",
		Short: "Add an element to the queue",
		Long: `Add an element to the queue.

For --flavor=simple, payload is a positional argument; if omitted, the
payload is read from standard input.

For --flavor=typed, pass one or more --field name=value pairs instead of
a positional payload.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traceID(cmd, flags)

			switch flags.flavor {
			case "typed":
				return addTyped(cmd, flags, fields)
			case "simple":
				var payload []byte
				if len(args) == 1 {
					payload = []byte(args[0])
				} else {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return err
					}
					payload = data
				}
				q, err := dirq.OpenSimple(flags.dir)
				if err != nil {
					return err
				}
				id, err := q.Add(payload)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			default:
				return fmt.Errorf("unknown flavor %q: want simple or typed", flags.flavor)
			}
		},
	}

	cmd.Flags().StringArrayVar(&fields, "field", nil, `typed field in "name=value" form, repeatable`)
	return cmd
}

func addTyped(cmd *cobra.Command, flags *rootFlags, fieldArgs []string) error {
	if flags.schema == "" {
		return fmt.Errorf("--schema is required for --flavor=typed")
	}
	q, err := dirq.OpenTyped(flags.dir, flags.schema)
	if err != nil {
		return err
	}

	record := dirq.Record{}
	for _, arg := range fieldArgs {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("--field %q must be in \"name=value\" form", arg)
		}
		record[name] = dirq.StringValue(value)
	}

	id, err := q.Add(record)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

