package calibration

import (
	"context"
	"io"
	"time"

	"github.com/agbru/primegen/internal/bignum"
	"github.com/agbru/primegen/internal/sieve"
)

const noMeasurement = time.Duration(1<<63 - 1)

// calibrationRunner times sieve runs into a discarding sink.
type calibrationRunner struct {
	ctx      context.Context
	limit    uint64
	perTrial time.Duration
}

func newCalibrationRunner(ctx context.Context, limit uint64, timeout time.Duration) *calibrationRunner {
	perTrial := timeout / 6
	if perTrial < 2*time.Second {
		perTrial = 2 * time.Second
	}
	return &calibrationRunner{ctx: ctx, limit: limit, perTrial: perTrial}
}

// runTrial runs one sieve with the given worker count.
//
// Returns:
//   - time.Duration: The wall time of the run.
//   - error: An error if the run failed or timed out.
func (r *calibrationRunner) runTrial(threads int) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.perTrial)
	defer cancel()
	gen := sieve.NewGenerator(sieve.NewLockedSink(io.Discard))
	start := time.Now()
	_, err := gen.Generate(ctx, sieve.Config{Limit: bignum.New(r.limit), Threads: threads})
	return time.Since(start), err
}

// measure runs every candidate once, in order. It stops early when the
// parent context ends and returns what was measured so far.
func (r *calibrationRunner) measure(candidates []int) ([]Measurement, error) {
	results := make([]Measurement, 0, len(candidates))
	for _, threads := range candidates {
		if err := r.ctx.Err(); err != nil {
			return results, err
		}
		if uint64(threads) > r.limit {
			continue
		}
		dur, err := r.runTrial(threads)
		if err != nil {
			if r.ctx.Err() != nil {
				return results, r.ctx.Err()
			}
			results = append(results, Measurement{Threads: threads, Duration: noMeasurement})
			continue
		}
		results = append(results, Measurement{Threads: threads, Duration: dur})
	}
	return results, nil
}

// best returns the fastest measurement, preferring fewer workers on ties.
func best(results []Measurement) (Measurement, bool) {
	winner := Measurement{Duration: noMeasurement}
	for _, m := range results {
		if m.Duration < winner.Duration {
			winner = m
		}
	}
	return winner, winner.Duration != noMeasurement
}
