package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agbru/primegen/internal/cli"
)

// baseline returns the duration of the valid measurement with the fewest
// threads, the reference for speedups.
func baseline(results []Measurement) (time.Duration, bool) {
	var ref Measurement
	found := false
	for _, m := range results {
		if m.Duration == noMeasurement || m.Duration <= 0 {
			continue
		}
		if !found || m.Threads < ref.Threads {
			ref, found = m, true
		}
	}
	return ref.Duration, found
}

// printCalibrationResults writes one row per candidate with its sieve time
// and its speedup over the smallest thread count.
func printCalibrationResults(out io.Writer, results []Measurement, bestThreads int) {
	ref, hasRef := baseline(results)

	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sThreads%s\t%sSieve Time%s\t%sSpeedup%s\t\n",
		cli.ColorUnderline(), cli.ColorReset(), cli.ColorUnderline(), cli.ColorReset(), cli.ColorUnderline(), cli.ColorReset())
	fmt.Fprintf(tw, "  %s\t%s\t%s\t\n", strings.Repeat("─", 7), strings.Repeat("─", 12), strings.Repeat("─", 8))
	for _, m := range results {
		elapsed, speedup := "N/A", "-"
		switch {
		case m.Duration == noMeasurement:
			elapsed = cli.ColorRed() + elapsed + cli.ColorReset()
		case m.Duration == 0:
			elapsed = "< 1µs"
		default:
			elapsed = cli.FormatExecutionDuration(m.Duration)
			if hasRef {
				speedup = fmt.Sprintf("x%.2f", float64(ref)/float64(m.Duration))
			}
		}
		mark := ""
		if m.Threads == bestThreads && m.Duration != noMeasurement {
			mark = fmt.Sprintf(" %s(Optimal)%s", cli.ColorGreen(), cli.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%d%s\t%s%s%s\t%s\t%s\n",
			cli.ColorCyan(), m.Threads, cli.ColorReset(), cli.ColorYellow(), elapsed, cli.ColorReset(), speedup, mark)
	}
	tw.Flush()
}

// printCalibrationOutput prints the one-line result of a quick calibration.
func printCalibrationOutput(out io.Writer, threads int, res QuickResult) {
	fmt.Fprintf(out, "%sQuick calibration%s (%v): threads=%s%d%s (confidence: %.0f%%)\n",
		cli.ColorGreen(), cli.ColorReset(),
		res.Duration.Round(time.Millisecond),
		cli.ColorYellow(), threads, cli.ColorReset(),
		res.Confidence*100)
}
