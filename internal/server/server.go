// Package server exposes the prime sieve and the big-number arithmetic over
// HTTP, with rate limiting, security headers and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/agbru/primegen/internal/config"
	apperrors "github.com/agbru/primegen/internal/errors"
	"github.com/agbru/primegen/internal/logging"
	"github.com/agbru/primegen/internal/service"
)

// Server wraps http.Server with the application routes and a graceful
// shutdown.
type Server struct {
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
}

// NewServer creates a server listening on cfg.Port.
//
// Parameters:
//   - cfg: The application configuration (port, default worker count).
//   - opts: Optional functional options (WithService, WithLogger, ...).
//
// Returns:
//   - *Server: The initialized server.
//   - error: An error if the default service could not be created.
func NewServer(cfg config.AppConfig, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stderr, "server"),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		threads := cfg.Threads
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
		svc, err := service.NewPrimeService(s.securityConfig.MaxLimit, s.securityConfig.MaxDigits, threads, 0)
		if err != nil {
			return nil, err
		}
		s.service = svc
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}
	return s, nil
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	routes := map[string]http.HandlerFunc{
		"/primes":  s.handlePrimes,
		"/arith":   s.handleArith,
		"/health":  s.handleHealth,
		"/metrics": s.handleMetrics,
	}
	for route, h := range routes {
		mux.HandleFunc(route, s.wrapWithMiddleware(route, h))
	}
	return mux
}

// wrapWithMiddleware applies Security -> RateLimit -> Logging -> Metrics.
func (s *Server) wrapWithMiddleware(route string, handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(route, handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return wrapped
}

// Start serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down
// gracefully within the shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return apperrors.NewServerError("server failed to start", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			logging.String("addr", ln.Addr().String()),
			logging.Int("max_digits", s.securityConfig.MaxDigits),
		)
		s.logger.Printf("endpoints: GET /primes?limit=<n>&threads=<t>, GET /arith?op=<op>&a=<n>&b=<n>, GET /health, GET /metrics")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context done, shutting down")
	case <-s.shutdownSignal:
		s.logger.Info("shutdown signal received, shutting down")
	case err := <-errCh:
		return apperrors.NewServerError("server failed", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
