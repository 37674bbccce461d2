package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pavelsr/dirq"
)

func newGetCommand(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Read an element's payload without removing it",
		Long:  "Read an element's payload. The element must already be locked by a prior lock call.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traceID(cmd, flags)
			id := args[0]

			switch flags.flavor {
			case "typed":
				if flags.schema == "" {
					return fmt.Errorf("--schema is required for --flavor=typed")
				}
				q, err := dirq.OpenTyped(flags.dir, flags.schema)
				if err != nil {
					return err
				}
				record, err := q.Get(id)
				if err != nil {
					return err
				}
				printRecord(cmd, record)
				return nil
			case "simple":
				q, err := dirq.OpenSimple(flags.dir)
				if err != nil {
					return err
				}
				payload, err := q.Get(id)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(payload)
				return err
			default:
				return fmt.Errorf("unknown flavor %q: want simple or typed", flags.flavor)
			}
		},
	}
	return cmd
}

func printRecord(cmd *cobra.Command, record dirq.Record) {
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := record[name]
		if v.Kind == dirq.KindBinary {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=<%d bytes binary>\n", name, len(v.Bin))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, v.Text)
	}
}
