package sieve

import "errors"

// Configuration errors. They are detected before any worker starts and
// before anything is written to the sink.
var (
	// ErrZeroLimit is returned when the exclusive upper bound is 0.
	ErrZeroLimit = errors.New("sieve: limit must be at least 1")
	// ErrZeroThreads is returned when no worker is requested.
	ErrZeroThreads = errors.New("sieve: thread count must be at least 1")
	// ErrTooManyThreads is returned when the thread count exceeds the limit,
	// which would leave some segments empty.
	ErrTooManyThreads = errors.New("sieve: thread count exceeds limit")
	// ErrInvalidRange is returned for a segment whose low bound exceeds its
	// high bound.
	ErrInvalidRange = errors.New("sieve: segment low bound exceeds high bound")
	// ErrSegmentTooLarge is returned when a segment holds more values than a
	// single bitset can address.
	ErrSegmentTooLarge = errors.New("sieve: segment too large for one worker")
)

// IsConfigError reports whether err is one of the configuration errors
// above.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrZeroLimit) ||
		errors.Is(err, ErrZeroThreads) ||
		errors.Is(err, ErrTooManyThreads) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrSegmentTooLarge)
}
