package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evgd/stackd/internal/config"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Socket  string // daemon socket path
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the stackd CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stackd",
		Short: "stackd - a shared bounded stack daemon",
		Long: `stackd serves a single shared int32 stack over a Unix domain socket.

Every connected client sees the same stack: pushes and pops interleave
across sessions, and the stack is torn down when the last session
detaches. The serve command runs the daemon; the remaining commands are
clients of a running daemon or readers of its operation journal.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Socket, "socket", config.DefaultSocket, "daemon socket path")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPushCommand(opts))
	cmd.AddCommand(NewPopCommand(opts))
	cmd.AddCommand(NewResizeCommand(opts))
	cmd.AddCommand(NewStatCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
