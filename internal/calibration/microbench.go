package calibration

import (
	"context"
	"slices"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Quick Calibration
// ─────────────────────────────────────────────────────────────────────────────

const (
	// QuickLimit is the sieve size of the startup calibration.
	QuickLimit = 2_000_000

	// QuickIterations is the number of timed runs per candidate.
	QuickIterations = 3

	// QuickTimeout bounds the whole startup calibration.
	QuickTimeout = 2 * time.Second
)

// QuickResult is the outcome of QuickCalibrate.
type QuickResult struct {
	// Threads is the fastest worker count.
	Threads int
	// Measurements holds the median time of every candidate.
	Measurements []Measurement
	// Confidence is a score from 0 to 1: the relative gap between the
	// winner and the runner-up, scaled so a 20% lead scores 1.
	Confidence float64
	// Duration is how long the calibration took.
	Duration time.Duration
}

// QuickCalibrate times a small sieve QuickIterations times per candidate
// and keeps the median of each.
func QuickCalibrate(ctx context.Context, candidates []int) (QuickResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, QuickTimeout)
	defer cancel()

	runner := newCalibrationRunner(ctx, QuickLimit, QuickTimeout)
	res := QuickResult{}
	for _, threads := range candidates {
		runs := make([]Measurement, 0, QuickIterations)
		for i := 0; i < QuickIterations; i++ {
			m, err := runner.measure([]int{threads})
			if err != nil {
				res.Duration = time.Since(start)
				return res, err
			}
			runs = append(runs, m...)
		}
		if len(runs) == 0 {
			continue
		}
		res.Measurements = append(res.Measurements, Measurement{Threads: threads, Duration: median(runs)})
	}

	winner, ok := best(res.Measurements)
	if ok {
		res.Threads = winner.Threads
		res.Confidence = confidence(res.Measurements, winner)
	}
	res.Duration = time.Since(start)
	return res, nil
}

func median(runs []Measurement) time.Duration {
	d := make([]time.Duration, len(runs))
	for i, r := range runs {
		d[i] = r.Duration
	}
	slices.Sort(d)
	return d[len(d)/2]
}

func confidence(results []Measurement, winner Measurement) float64 {
	second := noMeasurement
	for _, m := range results {
		if m.Threads != winner.Threads && m.Duration < second {
			second = m.Duration
		}
	}
	if second == noMeasurement || winner.Duration <= 0 {
		return 0.5
	}
	gap := float64(second-winner.Duration) / float64(winner.Duration)
	return min(gap/0.2, 1)
}
