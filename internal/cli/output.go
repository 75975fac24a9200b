package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Process exit codes. main maps a command error to one of these with
// GetExitCode.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a round, a scenario or a content record failed
	ExitCommandError = 2 // the command could not start: flags, paths, config, no level pack
)

// ExitError carries the exit code a command wants the process to end with.
type ExitError struct {
	Code    int
	Message string
	Err     error // optional cause
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain, or
// ExitFailure for any other error.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope of every --format json reply.
type CLIResponse struct {
	Status  string    `json:"status"` // "ok" or "error"
	Data    any       `json:"data,omitempty"`
	Error   *CLIError `json:"error,omitempty"`
	Session string    `json:"session,omitempty"` // journal session the data describes
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"` // an ErrCode* constant
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Codes reported in CLIError.Code.
const (
	ErrCodeNotFound = "E002" // content path or journal file missing
	ErrCodeContent  = "E004" // content file unreadable or unparsable
	ErrCodeInvalid  = "E005" // content records rejected
	ErrCodeStore    = "E007" // journal could not be opened or read
	ErrCodeSession  = "E008" // session not in the journal
)

// OutputFormatter writes command results as JSON or text. Diagnostics go to
// ErrWriter so they never interleave with a JSON reply.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// newFormatter builds the formatter for cmd from the global flags.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func (f *OutputFormatter) isJSON() bool {
	return f.Format == "json"
}

func (f *OutputFormatter) reply(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

// Success writes data with no session attached.
func (f *OutputFormatter) Success(data any) error {
	return f.SessionSuccess("", data)
}

// SessionSuccess writes data produced by a session. Text output relies on
// data's String method.
func (f *OutputFormatter) SessionSuccess(session string, data any) error {
	if f.isJSON() {
		return f.reply(CLIResponse{Status: "ok", Data: data, Session: session})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes a coded failure. Details are only printed in text mode with
// --verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.isJSON() {
		return f.reply(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog writes a diagnostic line when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
