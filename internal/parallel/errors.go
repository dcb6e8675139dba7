// Package parallel holds the fan-out and join helpers used by the sieve
// driver.
package parallel

import (
	"sync"
)

// ErrorCollector keeps the first error reported by a group of goroutines
// and counts how many of them failed. The zero value is ready to use.
type ErrorCollector struct {
	mu       sync.Mutex
	first    error
	failures int
}

// SetError records err. Only the first non-nil error is kept; nil is
// ignored. Safe for concurrent use.
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if c.first == nil {
		c.first = err
	}
}

// Err returns the first recorded error.
func (c *ErrorCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.first
}

// Failures returns how many non-nil errors were reported.
func (c *ErrorCollector) Failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}
