package cli

import (
	"fmt"
	"time"

	"github.com/agbru/primegen/internal/sieve"
)

// ProgressState aggregates the per-segment updates of one sieve run.
// Updates may arrive out of order; the highest completed count wins.
type ProgressState struct {
	completed int
	total     int
	primes    int64
}

// NewProgressState creates a tracker for a run of total segments.
func NewProgressState(total int) *ProgressState {
	return &ProgressState{total: total}
}

// Update records a segment completion.
func (ps *ProgressState) Update(u sieve.ProgressUpdate) {
	if u.Completed > ps.completed {
		ps.completed = u.Completed
	}
	if u.Total > 0 {
		ps.total = u.Total
	}
	ps.primes += int64(u.Primes)
}

// Completed returns the number of finished segments.
func (ps *ProgressState) Completed() int { return ps.completed }

// Total returns the number of segments.
func (ps *ProgressState) Total() int { return ps.total }

// Primes returns the primes reported so far.
func (ps *ProgressState) Primes() int64 { return ps.primes }

// Fraction returns completed/total in [0, 1].
func (ps *ProgressState) Fraction() float64 {
	if ps.total <= 0 {
		return 0
	}
	return min(float64(ps.completed)/float64(ps.total), 1)
}

// ProgressWithETA extends ProgressState with time estimation capabilities.
// It tracks progress updates and calculates the estimated time remaining
// based on the rate of progress.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // smoothed progress rate (progress per second)
}

// NewProgressWithETA creates a new progress tracker with ETA calculation.
func NewProgressWithETA(total int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(total),
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records an update and recomputes the ETA.
// It uses exponential smoothing for the progress rate to provide stable
// estimates when segments finish in bursts.
//
// Returns:
//   - progress: The completed fraction (0.0 to 1.0).
//   - eta: The estimated time remaining, or 0 if the run started recently.
func (p *ProgressWithETA) UpdateWithETA(u sieve.ProgressUpdate) (progress float64, eta time.Duration) {
	p.Update(u)
	progress = p.Fraction()

	now := time.Now()
	elapsed := now.Sub(p.startTime)

	if elapsed < 100*time.Millisecond || progress <= 0.001 {
		p.lastUpdate = now
		p.lastProgress = progress
		return progress, 0
	}

	timeSinceUpdate := now.Sub(p.lastUpdate).Seconds()
	if timeSinceUpdate > 0.05 {
		progressDelta := progress - p.lastProgress
		if progressDelta > 0 {
			instantRate := progressDelta / timeSinceUpdate

			// Exponential smoothing: 70% old rate, 30% new rate
			if p.progressRate > 0 {
				p.progressRate = 0.7*p.progressRate + 0.3*instantRate
			} else {
				p.progressRate = progress / elapsed.Seconds()
			}
		}
		p.lastUpdate = now
		p.lastProgress = progress
	}

	return progress, p.GetETA()
}

// GetETA returns the current estimate without recording progress.
func (p *ProgressWithETA) GetETA() time.Duration {
	progress := p.Fraction()
	if p.progressRate <= 0 || progress >= 1.0 {
		return 0
	}
	eta := time.Duration((1.0 - progress) / p.progressRate * float64(time.Second))
	return min(eta, 24*time.Hour)
}

// FormatETA formats a duration into a human-readable ETA string.
//
// Returns:
//   - string: A formatted string like "< 1s", "2m30s", "1h15m".
func FormatETA(eta time.Duration) string {
	if eta <= 0 {
		return "estimating..."
	}
	if eta < time.Second {
		return "< 1s"
	}
	if eta < time.Minute {
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	}
	if eta < time.Hour {
		minutes := int(eta.Minutes())
		seconds := int(eta.Seconds()) % 60
		if seconds > 0 {
			return fmt.Sprintf("%dm%ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}
	hours := int(eta.Hours())
	minutes := int(eta.Minutes()) % 60
	if minutes > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}

// FormatProgressBarWithETA combines the percentage, the bar and the ETA.
// A finished run shows "done" instead of an ETA.
//
// Returns:
//   - string: A formatted string like "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	bar := progressBar(progress, width)
	if progress >= 1.0 {
		return fmt.Sprintf("%6.2f%% [%s] done", 100.0, bar)
	}
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, bar, FormatETA(eta))
}
