package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evgd/stackd/internal/client"
)

// NewPopCommand creates the pop command.
func NewPopCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pop",
		Short: "Pop the top element off the shared stack",
		Long: `Pop the top element off the shared stack and print it.

Text output is the bare value, so pop composes in shell pipelines. An
empty stack refuses the pop and the command exits with status 1.

Example:
  stackd pop`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPop(rootOpts, cmd)
		},
	}

	return cmd
}

func runPop(opts *RootOptions, cmd *cobra.Command) error {
	c, err := client.Dial(opts.Socket)
	if err != nil {
		return WrapExitError(ExitCommandError, "connect to daemon", err)
	}
	defer c.Close()

	f := formatter(opts, cmd)
	v, err := c.Pop()
	if err != nil {
		return opError(f, "pop", err)
	}
	return f.Success(strconv.FormatInt(int64(v), 10), map[string]any{"value": v})
}
