package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit codes. ExitFailure means scenarios ran and failed;
// ExitCommandError means the command itself could not run.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// Stable error codes surfaced in JSON output.
const (
	ErrCodeGeneric      = "E001"
	ErrCodePathNotFound = "E002"
	ErrCodeBadScenario  = "E003"
)

// ExitError carries a process exit code alongside an error. Commands
// return it from RunE; main maps it to os.Exit via GetExitCode.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code and context to an underlying error.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// GetExitCode resolves err to a process exit code, unwrapping as
// needed. Plain errors map to ExitFailure.
func GetExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope every JSON-mode command emits. Exactly
// one of Data and Error is set.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" | "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the error half of a CLIResponse.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// OutputFormatter renders command results as text or JSON. Results go
// to Writer; diagnostics go to ErrWriter when set, so JSON mode never
// interleaves logs with the response envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Success renders data. In text mode data is printed as-is; commands
// that need richer text output format it themselves before calling.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format != "json" {
		fmt.Fprintln(f.Writer, data)
		return nil
	}
	return f.emit(CLIResponse{Status: "ok", Data: data})
}

// Error renders a failure with its stable code.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format != "json" {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
		if f.Verbose && details != nil {
			fmt.Fprintf(f.Writer, "Details: %v\n", details)
		}
		return nil
	}
	return f.emit(CLIResponse{
		Status: "error",
		Error:  &CLIError{Code: code, Message: message, Details: details},
	})
}

// VerboseLog prints a diagnostic line when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.diagnostics(), format+"\n", args...)
}

func (f *OutputFormatter) emit(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}

func (f *OutputFormatter) diagnostics() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
