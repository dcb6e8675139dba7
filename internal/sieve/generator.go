// Package sieve enumerates the primes below an arbitrary-precision limit
// with a concurrent segmented sieve of Eratosthenes.
//
// The range [0, limit) is split into one segment per worker. The primes up
// to sqrt(limit) are computed once, then every worker crosses off their
// multiples in its own bitset and appends its primes to a shared Sink in a
// single batch. A shared Counter tracks completed segments for progress
// reporting. Within a batch primes are ascending; batches from different
// segments arrive in completion order (see SortLines).
package sieve

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/primegen/internal/bignum"
	"github.com/agbru/primegen/internal/parallel"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "primegen_sieve_runs_total",
			Help: "The total number of sieve runs, by outcome",
		},
		[]string{"status"},
	)
	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "primegen_sieve_duration_seconds",
			Help:    "The duration of sieve runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)
	primesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "primegen_primes_emitted_total",
			Help: "The total number of primes written by all runs",
		},
	)
)

// Config holds the inputs of a sieve run.
type Config struct {
	// Limit is the exclusive upper bound. Every prime p < Limit is emitted.
	Limit bignum.Nat
	// Threads is the number of segments, and so of concurrent workers.
	Threads int
}

// Validate checks the configuration without touching any sink.
//
// Returns:
//   - error: ErrZeroLimit, ErrZeroThreads, ErrTooManyThreads or
//     ErrSegmentTooLarge, or nil.
func (c Config) Validate() error {
	if c.Limit.IsZero() {
		return ErrZeroLimit
	}
	if c.Threads <= 0 {
		return ErrZeroThreads
	}
	if bignum.New(uint64(c.Threads)).Greater(c.Limit) {
		return fmt.Errorf("%w: %d threads for limit %s", ErrTooManyThreads, c.Threads, c.Limit)
	}
	segments, err := Partition(c.Limit, c.Threads)
	if err != nil {
		return err
	}
	// The last segment absorbs the remainder, so it is the largest.
	if _, err := segments[len(segments)-1].Size(); err != nil {
		return err
	}
	return nil
}

// Result summarizes a completed run.
type Result struct {
	Limit       bignum.Nat
	Threads     int
	SmallPrimes int
	Primes      int64
	Duration    time.Duration
}

// Generator runs sieves into a Sink.
type Generator struct {
	sink     Sink
	observer ProgressObserver
	tracer   trace.Tracer
}

// Option configures a Generator.
type Option func(*Generator)

// WithObserver sets the observer notified after every completed segment.
// Combine several observers with a ProgressSubject.
func WithObserver(o ProgressObserver) Option {
	return func(g *Generator) {
		if o != nil {
			g.observer = o
		}
	}
}

// WithTracer overrides the OpenTelemetry tracer. The default is the global
// provider's "sieve" tracer.
func WithTracer(t trace.Tracer) Option {
	return func(g *Generator) {
		if t != nil {
			g.tracer = t
		}
	}
}

// NewGenerator creates a generator writing to sink.
func NewGenerator(sink Sink, opts ...Option) *Generator {
	g := &Generator{
		sink:     sink,
		observer: NoOpObserver{},
		tracer:   otel.Tracer("sieve"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate writes every prime below cfg.Limit to the sink.
//
// The configuration is validated first; on a configuration error nothing is
// started and nothing is written. Otherwise the small primes are computed,
// the range is partitioned into cfg.Threads segments and one worker runs per
// segment. Generate returns after every worker has finished.
//
// Parameters:
//   - ctx: Cancels the run. Workers check it between small primes.
//   - cfg: The limit and the number of workers.
//
// Returns:
//   - Result: Counts and timing of the run.
//   - error: A configuration error, the context error or the first worker
//     error.
func (g *Generator) Generate(ctx context.Context, cfg Config) (res Result, err error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	ctx, span := g.tracer.Start(ctx, "Generate")
	span.SetAttributes(
		attribute.String("limit", cfg.Limit.String()),
		attribute.Int("threads", cfg.Threads),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
		}
		runsTotal.WithLabelValues(status).Inc()
		runDuration.Observe(time.Since(start).Seconds())
		log.Debug().
			Str("limit", cfg.Limit.String()).
			Int("threads", cfg.Threads).
			Int64("primes", res.Primes).
			Dur("duration", time.Since(start)).
			Str("status", status).
			Msg("sieve completed")
	}()

	segments, err := Partition(cfg.Limit, cfg.Threads)
	if err != nil {
		return Result{}, err
	}

	small := PrepareSievingPrimes(SmallPrimes(cfg.Limit))
	counter := NewCounter(len(segments))
	workers := make([]*Worker, len(segments))
	for i, seg := range segments {
		workers[i] = &Worker{
			Segment:  seg,
			Primes:   small,
			Sink:     g.sink,
			Counter:  counter,
			Observer: g.observer,
			Tracer:   g.tracer,
		}
	}

	err = parallel.FanOut(ctx, len(workers), func(ctx context.Context, i int) error {
		return workers[i].Run(ctx)
	})

	res = Result{
		Limit:       cfg.Limit,
		Threads:     cfg.Threads,
		SmallPrimes: len(small),
		Duration:    time.Since(start),
	}
	for _, w := range workers {
		res.Primes += int64(w.Found())
	}
	primesTotal.Add(float64(res.Primes))
	if err != nil {
		return res, err
	}
	return res, nil
}
