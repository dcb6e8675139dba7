package sieve

//go:generate mockgen -source=sink.go -destination=mocks/mock_sink.go -package=mocks

import (
	"io"
	"sync"
	"sync/atomic"
)

// Sink receives the output of completed segments. Each call to Append
// carries the whole batch of one segment: newline-terminated decimal primes
// in ascending order. Implementations must be safe for concurrent use and
// must write each batch contiguously.
type Sink interface {
	Append(batch []byte) error
}

// LockedSink serializes batches onto an io.Writer under a mutex, so lines
// from different segments never interleave.
type LockedSink struct {
	mu    sync.Mutex
	w     io.Writer
	bytes int64
}

// NewLockedSink wraps w. The caller keeps ownership of w and closes it.
func NewLockedSink(w io.Writer) *LockedSink {
	return &LockedSink{w: w}
}

// Append writes batch to the underlying writer in one critical section.
func (s *LockedSink) Append(batch []byte) error {
	if len(batch) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.w.Write(batch)
	s.bytes += int64(n)
	if err != nil {
		return err
	}
	if n != len(batch) {
		return io.ErrShortWrite
	}
	return nil
}

// Written returns the number of bytes accepted so far.
func (s *LockedSink) Written() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytes
}

// Counter counts completed segments. It is shared by all workers of a run.
type Counter struct {
	completed atomic.Int64
	total     int64
}

// NewCounter returns a counter for a run of total segments.
func NewCounter(total int) *Counter {
	return &Counter{total: int64(total)}
}

// Increment records one completed segment and returns the new count.
func (c *Counter) Increment() int {
	return int(c.completed.Add(1))
}

// Completed returns the number of segments recorded so far.
func (c *Counter) Completed() int { return int(c.completed.Load()) }

// Total returns the number of segments in the run.
func (c *Counter) Total() int { return int(c.total) }

// Fraction returns completed/total clamped to [0, 1].
func (c *Counter) Fraction() float64 {
	if c.total <= 0 {
		return 0
	}
	f := float64(c.completed.Load()) / float64(c.total)
	if f > 1 {
		f = 1
	}
	return f
}
