// Package apperrors defines the error classes of primegen and maps them to
// process exit codes.
//
// Every class that carries a cause implements Unwrap, so callers test for
// context cancellation or sentinel errors with errors.Is through any layer
// of wrapping.
package apperrors

import (
	"fmt"
)

// Process exit statuses.
const (
	ExitSuccess       = 0   // the run completed
	ExitErrorGeneric  = 1   // I/O, upload or any unclassified failure
	ExitErrorTimeout  = 2   // --timeout expired
	ExitErrorMismatch = 3   // the written output failed verification
	ExitErrorConfig   = 4   // flags, environment or file settings are invalid
	ExitErrorCanceled = 130 // SIGINT or SIGTERM
)

// ConfigError reports settings that make a run impossible. It is raised
// before any output is created.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// SieveError records the stage of a run (generate, sort, verify, upload)
// during which Cause happened.
type SieveError struct {
	Stage string
	Cause error
}

func (e SieveError) Error() string {
	if e.Stage == "" {
		return e.Cause.Error()
	}
	return e.Stage + ": " + e.Cause.Error()
}

func (e SieveError) Unwrap() error { return e.Cause }

// NewSieveError wraps cause with a stage name. A nil cause yields nil so the
// call can wrap a return value directly.
func NewSieveError(stage string, cause error) error {
	if cause == nil {
		return nil
	}
	return SieveError{Stage: stage, Cause: cause}
}

// VerificationError reports that a written output file failed its audit.
// Summary is the human-readable audit report.
type VerificationError struct {
	Summary string
}

func (e VerificationError) Error() string {
	return "verification failed: " + e.Summary
}

// ServerError wraps a failure of the HTTP server lifecycle (listen, serve or
// shutdown).
//
// Parameters of NewServerError:
//   - message: What the server was doing.
//   - cause: The underlying error, possibly nil.
type ServerError struct {
	Message string
	Cause   error
}

func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError builds a ServerError.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}
