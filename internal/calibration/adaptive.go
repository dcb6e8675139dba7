// Package calibration measures how many sieve workers run fastest on the
// current machine and caches the answer in a profile file.
package calibration

import (
	"runtime"
	"slices"
)

// ─────────────────────────────────────────────────────────────────────────────
// Adaptive Thread Candidates
// ─────────────────────────────────────────────────────────────────────────────

// GenerateThreadCandidates returns the worker counts tried by a full
// calibration: the powers of two up to the core count, the core count
// itself, and twice the core count to cover hyper-threaded machines.
func GenerateThreadCandidates() []int {
	return threadCandidates(runtime.NumCPU(), true)
}

// GenerateQuickThreadCandidates returns a smaller set for the startup
// calibration: one worker, half the cores and all of them.
func GenerateQuickThreadCandidates() []int {
	return threadCandidates(runtime.NumCPU(), false)
}

func threadCandidates(numCPU int, full bool) []int {
	if numCPU < 1 {
		numCPU = 1
	}
	var out []int
	if full {
		for n := 1; n < numCPU; n *= 2 {
			out = append(out, n)
		}
		out = append(out, numCPU)
		if numCPU > 1 {
			out = append(out, 2*numCPU)
		}
	} else {
		out = []int{1, max(numCPU/2, 1), numCPU}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// EstimateOptimalThreads is the fallback when no measurement is available.
func EstimateOptimalThreads() int {
	return max(runtime.NumCPU(), 1)
}

// ValidateThreads clamps a calibrated worker count to a sane range.
func ValidateThreads(threads int) int {
	switch {
	case threads < 1:
		return EstimateOptimalThreads()
	case threads > 4*runtime.NumCPU():
		return 4 * runtime.NumCPU()
	default:
		return threads
	}
}
