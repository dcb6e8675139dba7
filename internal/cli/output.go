package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/agbru/primegen/pkg/models"
)

// PrintExecutionConfig prints the parameters of the run about to start.
func PrintExecutionConfig(out io.Writer, limit string, threads int, output, compression string) {
	fmt.Fprintf(out, "%s--- Execution Configuration ---%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(out, "Primes below %s%s%s with %s%d%s segment(s).\n",
		ColorMagenta(), formatNumberString(limit), ColorReset(), ColorCyan(), threads, ColorReset())
	if compression != "" && compression != "none" {
		fmt.Fprintf(out, "Output: %s%s%s (%s)\n", ColorCyan(), output, ColorReset(), compression)
	} else {
		fmt.Fprintf(out, "Output: %s%s%s\n", ColorCyan(), output, ColorReset())
	}
	fmt.Fprintln(out)
}

// FormatQuietSummary returns the one-line summary printed in quiet mode:
// the number of primes found.
func FormatQuietSummary(s models.RunSummary) string {
	return fmt.Sprintf("%d", s.Primes)
}

// DisplayQuietSummary outputs the quiet-mode summary line.
func DisplayQuietSummary(out io.Writer, s models.RunSummary) {
	fmt.Fprintln(out, FormatQuietSummary(s))
}

// DisplayJSONSummary writes the summary as indented JSON.
func DisplayJSONSummary(out io.Writer, s models.RunSummary) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// DisplayRunSummary prints the human-readable report of a run: the counts
// and a table of the executed stages.
//
// Parameters:
//   - out: The output writer.
//   - s: The run summary.
func DisplayRunSummary(out io.Writer, s models.RunSummary) {
	fmt.Fprintf(out, "\n%s--- Run Summary ---%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(out, "Run ID          : %s\n", s.RunID)
	fmt.Fprintf(out, "Primes below %s : %s%s%s\n", formatNumberString(s.Limit), ColorGreen(), formatNumberString(fmt.Sprintf("%d", s.Primes)), ColorReset())
	fmt.Fprintf(out, "Sieving primes  : %s\n", formatNumberString(fmt.Sprintf("%d", s.SmallPrimes)))
	fmt.Fprintf(out, "Segments        : %d\n", s.Threads)
	if s.Output != "" {
		fmt.Fprintf(out, "Output          : %s%s%s (%s bytes", ColorCyan(), s.Output, ColorReset(), formatNumberString(fmt.Sprintf("%d", s.Bytes)))
		if s.Sorted {
			fmt.Fprint(out, ", sorted")
		}
		fmt.Fprintln(out, ")")
	}
	if s.UploadedTo != "" {
		fmt.Fprintf(out, "Uploaded to     : %s%s%s\n", ColorCyan(), s.UploadedTo, ColorReset())
	}
	if v := s.Verify; v != nil {
		status := fmt.Sprintf("%sOK%s", ColorGreen(), ColorReset())
		if !v.OK {
			status = fmt.Sprintf("%sFAILED%s (duplicates %d, composites %d, missing %d, malformed %d, out of range %d)",
				ColorRed(), ColorReset(), v.Duplicates, v.Composites, v.Missing, v.Malformed, v.OutOfRange)
		}
		fmt.Fprintf(out, "Verification    : %s\n", status)
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sStage%s\t%sDuration%s\t%sStatus%s\n",
		ColorUnderline(), ColorReset(), ColorUnderline(), ColorReset(), ColorUnderline(), ColorReset())
	for _, st := range s.Stages {
		var status, duration string
		switch {
		case st.Skipped:
			status, duration = "skipped", "-"
		case st.Error != "":
			status = fmt.Sprintf("%s❌ Failure (%s)%s", ColorRed(), st.Error, ColorReset())
			duration = formatStageDuration(st.Duration)
		default:
			status = fmt.Sprintf("%s✅ Success%s", ColorGreen(), ColorReset())
			duration = formatStageDuration(st.Duration)
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\n", ColorBlue(), st.Name, ColorReset(), ColorYellow(), duration, ColorReset(), status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}
	fmt.Fprintf(out, "\nTotal time: %s%s%s\n", ColorGreen(), formatStageDuration(s.Duration), ColorReset())
}

func formatStageDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return FormatExecutionDuration(d)
}
