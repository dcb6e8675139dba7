package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	err := NewConfigError("threads (%d) cannot exceed limit (%s)", 8, "5")
	assert.EqualError(t, err, "threads (8) cannot exceed limit (5)")

	var cfgErr ConfigError
	require.ErrorAs(t, fmt.Errorf("parse: %w", err), &cfgErr)
	assert.Equal(t, "threads (8) cannot exceed limit (5)", cfgErr.Message)
}

func TestSieveError(t *testing.T) {
	t.Parallel()

	t.Run("message carries the stage", func(t *testing.T) {
		t.Parallel()
		assert.EqualError(t, SieveError{Stage: "upload", Cause: errors.New("access denied")}, "upload: access denied")
		assert.EqualError(t, SieveError{Cause: errors.New("disk full")}, "disk full")
	})

	t.Run("cause stays reachable", func(t *testing.T) {
		t.Parallel()
		err := NewSieveError("generate", fmt.Errorf("segment 3: %w", context.Canceled))
		assert.ErrorIs(t, err, context.Canceled)

		var sieveErr SieveError
		require.ErrorAs(t, err, &sieveErr)
		assert.Equal(t, "generate", sieveErr.Stage)
	})

	t.Run("nil cause", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, NewSieveError("sort", nil))
	})
}

func TestVerificationError(t *testing.T) {
	t.Parallel()
	err := SieveError{Stage: "verify", Cause: VerificationError{Summary: "2 missing, 1 composite"}}
	assert.EqualError(t, err, "verify: verification failed: 2 missing, 1 composite")

	var verErr VerificationError
	require.ErrorAs(t, err, &verErr)
	assert.Equal(t, "2 missing, 1 composite", verErr.Summary)
}

func TestServerError(t *testing.T) {
	t.Parallel()
	cause := errors.New("address already in use")
	tests := []struct {
		name  string
		err   error
		want  string
		cause error
	}{
		{"with cause", NewServerError("server failed to start", cause), "server failed to start: address already in use", cause},
		{"without cause", NewServerError("server stopped", nil), "server stopped", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.EqualError(t, tt.err, tt.want)
			assert.Equal(t, tt.cause, errors.Unwrap(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitErrorGeneric},
		{"deadline", context.DeadlineExceeded, ExitErrorTimeout},
		{"wrapped deadline", NewSieveError("generate", fmt.Errorf("segment 0: %w", context.DeadlineExceeded)), ExitErrorTimeout},
		{"canceled", NewSieveError("upload", context.Canceled), ExitErrorCanceled},
		{"verification", VerificationError{Summary: "x"}, ExitErrorMismatch},
		{"config", NewConfigError("bad"), ExitErrorConfig},
		{"wrapped config", fmt.Errorf("%w: %w", NewConfigError("invalid sieve configuration"), errors.New("zero threads")), ExitErrorConfig},
		{"server", NewServerError("failed", errors.New("x")), ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
