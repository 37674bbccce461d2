// Command dirq provides a CLI tool for inspecting and managing directory
// queues.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pavelsr/dirq"
)

const version = "1.0.0"

// rootFlags holds the global flags shared by every subcommand.
type rootFlags struct {
	dir    string
	flavor string
	schema string
	trace  bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:     "dirq",
		Short:   "Inspect and manage directory queues",
		Version: version,
	}

	cmd.PersistentFlags().StringVar(&flags.dir, "dir", "", "queue root directory (required)")
	cmd.PersistentFlags().StringVar(&flags.flavor, "flavor", "simple", "queue flavor: simple|typed")
	cmd.PersistentFlags().StringVar(&flags.schema, "schema", "", "typed queue field schema, e.g. \"body:string header:string?\"")
	cmd.PersistentFlags().BoolVar(&flags.trace, "trace", false, "log a correlation id for this invocation")
	_ = cmd.MarkPersistentFlagRequired("dir")

	cmd.AddCommand(
		newAddCommand(flags),
		newGetCommand(flags),
		newLockCommand(flags),
		newUnlockCommand(flags),
		newTouchCommand(flags),
		newRemoveCommand(flags),
		newListCommand(flags),
		newStatsCommand(flags),
		newInspectCommand(flags),
		newPurgeCommand(flags),
	)
	return cmd
}

// traceID logs a v7 (time-ordered) correlation id for this invocation when
// --trace is set, and returns it for inclusion in subsequent log lines.
func traceID(cmd *cobra.Command, flags *rootFlags) string {
	if !flags.trace {
		return ""
	}
	id := uuid.Must(uuid.NewV7()).String()
	fmt.Fprintf(cmd.ErrOrStderr(), "trace=%s\n", id)
	return id
}

// openQueue opens either a typed or simple queue at flags.dir, dispatching
// on flags.flavor. A null queue is not exposed through the CLI: it holds
// nothing to inspect or manage.
func openQueue(flags *rootFlags) (dirq.Queue, error) {
	switch flags.flavor {
	case "typed":
		if flags.schema == "" {
			return nil, fmt.Errorf("--schema is required for --flavor=typed")
		}
		return dirq.OpenTyped(flags.dir, flags.schema)
	case "simple":
		return dirq.OpenSimple(flags.dir)
	default:
		return nil, fmt.Errorf("unknown flavor %q: want simple or typed", flags.flavor)
	}
}
