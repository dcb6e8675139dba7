package server

import (
	"time"

	"github.com/agbru/primegen/internal/logging"
	"github.com/agbru/primegen/internal/service"
)

// Option defines a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the structured logger of the server.
//
// Parameters:
//   - logger: The logger to use. If nil, the default logger is kept.
//
// Returns:
//   - Option: A functional option that configures the server's logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithService sets the service answering /primes and /arith, typically a
// mock in tests. Without it the server builds a service.PrimeService from
// its security limits.
func WithService(svc service.Service) Option {
	return func(s *Server) {
		if svc != nil {
			s.service = svc
		}
	}
}

// WithTimeouts sets custom timeout configuration for the server.
func WithTimeouts(timeouts Timeouts) Option {
	return func(s *Server) {
		s.timeouts = timeouts
	}
}

// WithRateLimiter sets a custom rate limiter for the server.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		s.rateLimiter = rl
	}
}

// WithSecurityConfig sets a custom security configuration for the server.
func WithSecurityConfig(config SecurityConfig) Option {
	return func(s *Server) {
		s.securityConfig = config
	}
}

// WithMaxLimit caps the limit accepted by /primes.
func WithMaxLimit(maxLimit uint64) Option {
	return func(s *Server) {
		s.securityConfig.MaxLimit = maxLimit
	}
}

// WithMaxDigits caps the length of /arith operands.
func WithMaxDigits(maxDigits int) Option {
	return func(s *Server) {
		s.securityConfig.MaxDigits = maxDigits
	}
}

// Timeouts holds timeout configuration for the HTTP server.
type Timeouts struct {
	// RequestTimeout is the maximum duration of a single sieve request.
	RequestTimeout time.Duration
	// ShutdownTimeout is the maximum duration allowed for graceful shutdown.
	ShutdownTimeout time.Duration
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
}

// DefaultServerTimeouts returns the production timeouts.
func DefaultServerTimeouts() Timeouts {
	return Timeouts{
		RequestTimeout:  2 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    3 * time.Minute,
		IdleTimeout:     2 * time.Minute,
	}
}
