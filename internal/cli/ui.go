// The cli package provides the terminal front end of primegen: the live
// progress display of a sieve run, the run summary, shell completion and the
// interactive big-number REPL.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/primegen/internal/sieve"
	"github.com/agbru/primegen/internal/ui"
)

const (
	// TruncationLimit is the digit count above which the REPL elides the
	// middle of a value.
	TruncationLimit = 100
	// DisplayEdges is the number of digits kept on each side of an elided
	// value.
	DisplayEdges = 25
	// ProgressRefreshRate is the redraw period of the progress line.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in cells of the progress bar.
	ProgressBarWidth = 40
)

// FormatExecutionDuration renders d with a unit suited to its magnitude:
// whole microseconds below a millisecond, whole milliseconds below a second,
// and millisecond precision above.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.Round(time.Millisecond).String()
	}
}

// Theme accessors. They read the current theme on every call so that
// --no-color applied after start-up takes effect.
func ColorReset() string     { return ui.GetCurrentTheme().Reset }
func ColorRed() string       { return ui.GetCurrentTheme().Error }
func ColorGreen() string     { return ui.GetCurrentTheme().Success }
func ColorYellow() string    { return ui.GetCurrentTheme().Warning }
func ColorBlue() string      { return ui.GetCurrentTheme().Primary }
func ColorMagenta() string   { return ui.GetCurrentTheme().Info }
func ColorCyan() string      { return ui.GetCurrentTheme().Secondary }
func ColorBold() string      { return ui.GetCurrentTheme().Bold }
func ColorUnderline() string { return ui.GetCurrentTheme().Underline }

// Spinner is the part of *spinner.Spinner that DisplayProgress drives.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Suffix = suffix
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// progressBar draws a bar of width cells, filled in proportion to
// progress (clamped to [0, 1]).
func progressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// progressLine renders the status text shown after the spinner.
func progressLine(state *ProgressWithETA, eta time.Duration) string {
	return fmt.Sprintf(" Segments %d/%d  %s  primes: %s",
		state.Completed(), state.Total(),
		FormatProgressBarWithETA(state.Fraction(), eta, ProgressBarWidth),
		formatNumberString(fmt.Sprintf("%d", state.Primes())))
}

// DisplayProgress renders a spinner and a progress bar for a running sieve.
// It runs in its own goroutine and returns once updates is closed, after
// printing a final line that stays on screen.
//
// Parameters:
//   - wg: Signaled when the display routine is complete.
//   - updates: Receives one update per completed segment.
//   - segments: The number of segments of the run.
//   - out: The io.Writer to which the progress bar is rendered.
func DisplayProgress(wg *sync.WaitGroup, updates <-chan sieve.ProgressUpdate, segments int, out io.Writer) {
	defer wg.Done()
	if segments <= 0 {
		for range updates { // Drain the channel
		}
		return
	}

	state := NewProgressWithETA(segments)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	spinnerStopped := false
	defer func() {
		if !spinnerStopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				s.Stop()
				spinnerStopped = true
				fmt.Fprintf(out, "%s\n", strings.TrimPrefix(progressLine(state, 0), " "))
				return
			}
			state.UpdateWithETA(update)
		case <-ticker.C:
			s.UpdateSuffix(progressLine(state, state.GetETA()))
		}
	}
}

// formatNumberString groups the digits of an unsigned decimal string by
// thousands ("1234567" becomes "1,234,567").
func formatNumberString(s string) string {
	if len(s) <= 3 {
		return s
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	var b strings.Builder
	b.Grow(len(s) + (len(s)-1)/3)
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
