package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider defines the interface for obtaining terminal color codes.
// This abstraction breaks the import cycle with cli.
type ColorProvider interface {
	Yellow() string
	Red() string
	Reset() string
}

// DefaultColorProvider provides no color codes (for non-terminal output).
type DefaultColorProvider struct{}

func (d DefaultColorProvider) Yellow() string { return "" }
func (d DefaultColorProvider) Red() string    { return "" }
func (d DefaultColorProvider) Reset() string  { return "" }

// ExitCode returns the process exit status for err without printing
// anything.
func ExitCode(err error) int {
	var cfgErr ConfigError
	var verErr VerificationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &verErr):
		return ExitErrorMismatch
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}

// HandleSieveError prints a status line describing a failed run and returns
// the matching exit code.
//
// Parameters:
//   - err: The error that occurred.
//   - duration: How long the run lasted before it failed.
//   - out: The io.Writer to which the error message will be written.
//   - colors: Provider for terminal color codes (can be nil for no colors).
//
// Returns:
//   - int: The appropriate exit code for the error type.
func HandleSieveError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = DefaultColorProvider{}
	}

	msgSuffix := ""
	if duration > 0 {
		msgSuffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	code := ExitCode(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Failure (Timeout). The execution limit was reached%s.\n", msgSuffix)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), msgSuffix, colors.Reset())
	case ExitErrorMismatch:
		fmt.Fprintf(out, "%sStatus: Verification failed.%s %v\n", colors.Red(), colors.Reset(), err)
	case ExitErrorConfig:
		fmt.Fprintf(out, "Status: Invalid configuration: %v\n", err)
	default:
		fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	}
	return code
}
