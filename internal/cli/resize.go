package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evgd/stackd/internal/client"
)

// NewResizeCommand creates the resize command.
func NewResizeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resize <size>",
		Short: "Set the shared stack's capacity",
		Long: `Set the shared stack's capacity in elements.

Existing elements survive a resize; shrinking below the current depth
discards the excess from the top. Sizes outside the daemon's configured
bound are refused and the command exits with status 1.

Example:
  stackd resize 256`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResize(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runResize(opts *RootOptions, raw string, cmd *cobra.Command) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid size %q", raw), err)
	}

	c, err := client.Dial(opts.Socket)
	if err != nil {
		return WrapExitError(ExitCommandError, "connect to daemon", err)
	}
	defer c.Close()

	f := formatter(opts, cmd)
	if err := c.Resize(n); err != nil {
		return opError(f, "resize", err)
	}
	return f.Success(fmt.Sprintf("capacity set to %d", n), map[string]any{"capacity": n})
}
