package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ErrRunTimeout is recorded as the cancellation cause when a run outlives
// its --timeout budget.
var ErrRunTimeout = errors.New("run exceeded its timeout")

// shutdownSignals stop a run early and leave no partial output behind.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// Lifecycle owns the deadline and signal subscription of a single run.
type Lifecycle struct {
	stopSignals   context.CancelFunc
	cancelTimeout context.CancelFunc
}

// SetupLifecycle derives the run context from ctx. It is canceled when the
// timeout expires, when SIGINT or SIGTERM arrives, or when Cleanup is called.
// A timeout of zero or less sets no deadline.
//
// Parameters:
//   - ctx: The parent context.
//   - timeout: The maximum duration of the run.
//
// Returns:
//   - context.Context: The run context.
//   - *Lifecycle: The handle whose Cleanup must be deferred.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *Lifecycle) {
	l := &Lifecycle{}
	if timeout > 0 {
		ctx, l.cancelTimeout = context.WithTimeoutCause(ctx, timeout, ErrRunTimeout)
	}
	ctx, l.stopSignals = signal.NotifyContext(ctx, shutdownSignals...)
	return ctx, l
}

// Cleanup releases the signal subscription and the deadline timer.
// It is safe to call more than once.
func (l *Lifecycle) Cleanup() {
	if l == nil {
		return
	}
	if l.stopSignals != nil {
		l.stopSignals()
	}
	if l.cancelTimeout != nil {
		l.cancelTimeout()
	}
}
