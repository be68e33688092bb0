package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evgd/stackd/internal/journal"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay the journal and check its consistency",
		Long: `Replay the operation journal against a simulated stack.

Every successful operation is re-applied in order and each row's
recorded depth, capacity, and popped value is cross-checked against the
simulation. A divergence means the journal contradicts the stack
discipline; the command then exits with status 1.

Examples:
  stackd verify --db ./journal.db
  stackd verify --db ./journal.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	jnl, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer jnl.Close()

	res, err := jnl.Replay(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay journal", err)
	}

	f := formatter(opts.RootOptions, cmd)
	if !res.Consistent {
		_ = f.Failure("divergence", res.Divergence)
		return NewExitError(ExitFailure, "journal is inconsistent")
	}
	return f.Success(verifyText(res), res)
}

func verifyText(res *journal.ReplayResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "journal consistent: %d events replayed\n", res.Events)
	fmt.Fprintf(&b, "final depth:    %d\n", res.Depth)
	fmt.Fprintf(&b, "final capacity: %d", res.Capacity)
	return b.String()
}
