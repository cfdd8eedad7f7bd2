package errors

import (
	"errors"
	"fmt"
)

// Error codes for programmatic handling.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeTraceClosed     = "TRACE_CLOSED"
	CodeDecoding        = "DECODING_FAILED"
	CodeEncoding        = "ENCODING_FAILED"
	CodeStorage         = "STORAGE_FAILED"
	CodeHook            = "HOOK_FAILED"
)

// Sentinels for errors.Is. Matching is by code, so any RuntraceError with
// the same code satisfies errors.Is against these.
var (
	ErrInvalidArgument = New(CodeInvalidArgument, "invalid argument")
	ErrTraceClosed     = New(CodeTraceClosed, "trace is closed")
	ErrDecoding        = New(CodeDecoding, "decoding failed")
	ErrEncoding        = New(CodeEncoding, "encoding failed")
	ErrStorage         = New(CodeStorage, "storage operation failed")
	ErrHook            = New(CodeHook, "lifecycle hook failed")
)

// RuntraceError is a structured error with a code and actionable suggestion.
type RuntraceError struct {
	Code       string // machine-readable code (e.g. TRACE_CLOSED)
	Message    string // human-readable description
	Suggestion string // actionable fix
	Err        error  // wrapped underlying error
}

// Error implements the error interface.
func (e *RuntraceError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is / errors.As.
func (e *RuntraceError) Unwrap() error {
	return e.Err
}

// New creates a RuntraceError with the given code and message.
func New(code, message string) *RuntraceError {
	return &RuntraceError{Code: code, Message: message}
}

// Wrap creates a RuntraceError wrapping an existing error.
func Wrap(code, message string, err error) *RuntraceError {
	return &RuntraceError{Code: code, Message: message, Err: err}
}

// Newf creates a RuntraceError with a formatted message.
func Newf(code, format string, args ...any) *RuntraceError {
	return &RuntraceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithSuggestion returns the error with the suggestion set.
func (e *RuntraceError) WithSuggestion(suggestion string) *RuntraceError {
	e.Suggestion = suggestion
	return e
}

// Is checks whether target matches this error's code.
func (e *RuntraceError) Is(target error) bool {
	var re *RuntraceError
	if errors.As(target, &re) {
		return e.Code == re.Code
	}
	return false
}

// AsCode extracts the RuntraceError code from an error, or "" if not a RuntraceError.
func AsCode(err error) string {
	var re *RuntraceError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// Suggestion extracts the suggestion from an error, or "" if not a RuntraceError.
func Suggestion(err error) string {
	var re *RuntraceError
	if errors.As(err, &re) {
		return re.Suggestion
	}
	return ""
}
