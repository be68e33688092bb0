package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evgd/stackd/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional - filter to one session
	Limit    int
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the operation journal",
		Long: `Print the daemon's operation journal in execution order.

Each row is one device operation with the stack's depth and capacity
after it ran, so the log reads as a timeline of the shared stack.

Examples:
  stackd trace --db ./journal.db
  stackd trace --db ./journal.db --session 0192ad3e --limit 20
  stackd trace --db ./journal.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "filter to one session token")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum events to print (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	jnl, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer jnl.Close()

	events, err := jnl.List(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "read journal", err)
	}
	if opts.Session != "" {
		events = filterSession(events, opts.Session)
	}

	if opts.Format == "json" {
		return formatter(opts.RootOptions, cmd).Success("", events)
	}
	return outputTraceText(cmd, events)
}

// filterSession keeps only events belonging to the given session token.
func filterSession(events []journal.Event, session string) []journal.Event {
	kept := events[:0]
	for _, e := range events {
		if e.Session == session {
			kept = append(kept, e)
		}
	}
	return kept
}

func outputTraceText(cmd *cobra.Command, events []journal.Event) error {
	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(no events)")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tSESSION\tOP\tVALUE\tARG\tSTATUS\tDEPTH\tCAP")
	for _, e := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			e.Seq,
			e.Session,
			e.Op,
			optInt32(e.Value),
			optInt(e.Arg),
			e.Status,
			e.Depth,
			e.Capacity)
	}
	return w.Flush()
}

func optInt32(v *int32) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(int64(*v), 10)
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
