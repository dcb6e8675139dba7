// Package service exposes the sieve and the big-number arithmetic behind a
// small interface shared by the HTTP server and the REPL. It enforces the
// size limits of untrusted requests and caches recent sieve results.
package service

//go:generate mockgen -source=prime_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/agbru/primegen/internal/bignum"
	"github.com/agbru/primegen/internal/sieve"
)

var (
	// ErrMaxValueExceeded is returned when a limit exceeds the configured maximum.
	ErrMaxValueExceeded = errors.New("maximum limit exceeded")
	// ErrOperandTooLarge is returned when an arithmetic operand has too many digits.
	ErrOperandTooLarge = errors.New("operand too large")
)

// DefaultCacheSize is the number of sieve results kept by NewPrimeService
// when no size is given.
const DefaultCacheSize = 64

// PrimesResult is the sorted list of primes below a limit.
type PrimesResult struct {
	Limit    string
	Threads  int
	Primes   []string
	Duration time.Duration
	Cached   bool
}

// Service defines the operations offered to the HTTP server and the REPL.
type Service interface {
	// Primes returns every prime below limit in ascending order. A threads
	// value of 0 selects the service default.
	Primes(ctx context.Context, limit bignum.Nat, threads int) (PrimesResult, error)
	// Arith evaluates one arithmetic operation (see Eval).
	Arith(op string, a, b bignum.Nat) (string, error)
}

// PrimeService implements Service on top of sieve.Generator.
type PrimeService struct {
	maxLimit       bignum.Nat
	maxDigits      int
	digitBound     bignum.Nat // 10^maxDigits
	defaultThreads int
	cache          *lru.Cache[string, PrimesResult]
}

// Ensure PrimeService implements Service interface.
var _ Service = (*PrimeService)(nil)

// NewPrimeService creates a service.
//
// Parameters:
//   - maxLimit: The largest accepted limit (0 for no limit).
//   - maxDigits: The largest accepted operand length in decimal digits (0 for no limit).
//   - defaultThreads: Workers used when a request does not choose.
//   - cacheSize: Number of cached sieve results (0 for DefaultCacheSize).
func NewPrimeService(maxLimit uint64, maxDigits, defaultThreads, cacheSize int) (*PrimeService, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, PrimesResult](cacheSize)
	if err != nil {
		return nil, err
	}
	s := &PrimeService{
		maxLimit:       bignum.New(maxLimit),
		maxDigits:      maxDigits,
		defaultThreads: max(defaultThreads, 1),
		cache:          cache,
	}
	if maxDigits > 0 {
		s.digitBound = bignum.MustParse("1" + strings.Repeat("0", maxDigits))
	}
	return s, nil
}

// Primes runs a sieve in memory and returns the sorted result. Results are
// cached per limit; the thread count does not change the result.
func (s *PrimeService) Primes(ctx context.Context, limit bignum.Nat, threads int) (PrimesResult, error) {
	if !s.maxLimit.IsZero() && limit.Greater(s.maxLimit) {
		return PrimesResult{}, fmt.Errorf("%w: %s > %s", ErrMaxValueExceeded, limit, s.maxLimit)
	}
	if threads <= 0 {
		threads = s.defaultThreads
		if v, ok := limit.Uint64(); ok && uint64(threads) > v {
			threads = max(int(v), 1)
		}
	}

	cfg := sieve.Config{Limit: limit, Threads: threads}
	if err := cfg.Validate(); err != nil {
		return PrimesResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return PrimesResult{}, err
	}

	key := limit.String()
	if res, ok := s.cache.Get(key); ok {
		res.Cached = true
		res.Threads = threads
		return res, nil
	}

	var raw bytes.Buffer
	gen := sieve.NewGenerator(sieve.NewLockedSink(&raw))
	run, err := gen.Generate(ctx, cfg)
	if err != nil {
		return PrimesResult{}, err
	}
	var sorted bytes.Buffer
	if err := sieve.SortLines(&raw, &sorted); err != nil {
		return PrimesResult{}, err
	}

	res := PrimesResult{
		Limit:    key,
		Threads:  threads,
		Primes:   splitLines(sorted.String()),
		Duration: run.Duration,
	}
	s.cache.Add(key, res)
	return res, nil
}

// Arith evaluates op after checking the operand sizes.
func (s *PrimeService) Arith(op string, a, b bignum.Nat) (string, error) {
	if s.maxDigits > 0 {
		for _, v := range []bignum.Nat{a, b} {
			if v.GreaterOrEqual(s.digitBound) {
				return "", fmt.Errorf("%w: more than %d digits", ErrOperandTooLarge, s.maxDigits)
			}
		}
	}
	return Eval(op, a, b)
}

// CacheLen returns the number of cached sieve results.
func (s *PrimeService) CacheLen() int {
	return s.cache.Len()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
