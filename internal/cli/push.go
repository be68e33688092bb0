package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evgd/stackd/internal/client"
)

// NewPushCommand creates the push command.
func NewPushCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <value>",
		Short: "Push a 32-bit integer onto the shared stack",
		Long: `Push a 32-bit signed integer onto the shared stack.

The daemon must be running. A full stack refuses the push and the
command exits with status 1.

Example:
  stackd push 42
  stackd push -- -7`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runPush(opts *RootOptions, raw string, cmd *cobra.Command) error {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid value %q", raw), err)
	}

	c, err := client.Dial(opts.Socket)
	if err != nil {
		return WrapExitError(ExitCommandError, "connect to daemon", err)
	}
	defer c.Close()

	f := formatter(opts, cmd)
	if err := c.Push(int32(v)); err != nil {
		return opError(f, "push", err)
	}
	return f.Success(fmt.Sprintf("pushed %d", v), map[string]any{"value": int32(v)})
}
