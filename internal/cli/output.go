package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	perrors "github.com/p-blackswan/designstore/internal/errors"
	"github.com/p-blackswan/designstore/internal/project"
)

// Exit codes for CLI commands.
const (
	ExitSuccess  = 0
	ExitFailure  = 1 // storage fault or unexpected error
	ExitNotFound = 2 // requested document does not exist
	ExitUsage    = 3 // invalid flags, arguments or identifiers
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
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
// Store errors map to their kind; anything else is ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch {
	case perrors.IsNotFound(err):
		return ExitNotFound
	case errors.Is(err, perrors.ErrInvalidIdentifier), errors.Is(err, perrors.ErrInvalidInput):
		return ExitUsage
	}
	return ExitFailure
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
)

// PrintError writes err to w in red.
func PrintError(w io.Writer, err error) {
	red.Fprintf(w, "Error: %v\n", err)
}

func success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ "+format+"\n", a...)
}

func warning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "! "+format+"\n", a...)
}

// emit writes v as JSON or YAML, or calls text for the text format.
func (o *RootOptions) emit(cmd *cobra.Command, v any, text func(io.Writer)) error {
	w := cmd.OutOrStdout()
	if o.Output == "text" {
		text(w)
		return nil
	}
	format, err := project.ParseFormat(o.Output)
	if err != nil {
		return err
	}
	out, err := project.Render(v, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	if format == project.FormatJSON {
		_, err = io.WriteString(w, "\n")
	}
	return err
}
