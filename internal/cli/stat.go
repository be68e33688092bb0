package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evgd/stackd/internal/client"
)

// NewStatCommand creates the stat command.
func NewStatCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat",
		Short: "Report the shared stack's depth and capacity",
		Long: `Report the shared stack's current depth and capacity.

Example:
  stackd stat
  stackd stat --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStat(rootOpts, cmd)
		},
	}

	return cmd
}

func runStat(opts *RootOptions, cmd *cobra.Command) error {
	c, err := client.Dial(opts.Socket)
	if err != nil {
		return WrapExitError(ExitCommandError, "connect to daemon", err)
	}
	defer c.Close()

	f := formatter(opts, cmd)
	st, err := c.Stat()
	if err != nil {
		return opError(f, "stat", err)
	}
	text := fmt.Sprintf("depth:    %d\ncapacity: %d", st.Depth, st.Capacity)
	return f.Success(text, st)
}
