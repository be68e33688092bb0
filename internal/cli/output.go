package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/evgd/stackd/internal/device"
	"github.com/evgd/stackd/internal/stack"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation refused (empty, full, invalid size) or inconsistent journal
	ExitCommandError = 2 // Command error (bad arguments, unreachable daemon, missing journal)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`    // "empty", "full", "invalid", ...
	Message string `json:"message"` // human-readable message
}

// Success outputs a successful result in the configured format. For
// text, textual is printed; for JSON, data is wrapped in a CLIResponse.
func (f *OutputFormatter) Success(textual string, data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, textual)
	return nil
}

// Failure outputs an error in the configured format.
func (f *OutputFormatter) Failure(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// formatter builds an OutputFormatter bound to the command's stdout.
func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
}

// errorCode maps an operation error to its short machine-readable code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, stack.ErrStackEmpty):
		return "empty"
	case errors.Is(err, stack.ErrStackFull):
		return "full"
	case errors.Is(err, stack.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, stack.ErrOutOfMemory):
		return "nomem"
	case errors.Is(err, device.ErrTransferFault):
		return "fault"
	default:
		return "io"
	}
}

// opError reports a refused operation through the formatter and returns
// the matching ExitError. Refusals (empty pop, full push, bad size) exit
// with ExitFailure; transport errors exit with ExitCommandError.
func opError(f *OutputFormatter, op string, err error) error {
	code := errorCode(err)
	msg := fmt.Sprintf("%s: %v", op, err)
	_ = f.Failure(code, msg)
	if code == "io" {
		return WrapExitError(ExitCommandError, op+" failed", err)
	}
	return WrapExitError(ExitFailure, op+" refused", err)
}
