package calibration

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/agbru/primegen/internal/cli"
	apperrors "github.com/agbru/primegen/internal/errors"
)

// DefaultCalibrationLimit is the sieve size of a full calibration.
const DefaultCalibrationLimit = 10_000_000

// CalibrationOptions configures the calibration process.
type CalibrationOptions struct {
	// ProfilePath is the path to save/load the calibration profile.
	// If empty, uses the default path.
	ProfilePath string
	// SaveProfile indicates whether to save the calibration results.
	SaveProfile bool
	// LoadProfile indicates whether to try loading an existing profile.
	LoadProfile bool
	// Limit is the sieve size timed for each candidate
	// (DefaultCalibrationLimit if zero).
	Limit uint64
	// Timeout bounds the whole calibration (10 minutes if zero).
	Timeout time.Duration
	// Candidates overrides GenerateThreadCandidates.
	Candidates []int
}

// RunCalibration times a full sieve for every candidate worker count,
// prints a summary table and saves the fastest count to the profile.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - out: The io.Writer to which progress and results will be written.
//   - opts: Calibration options.
//
// Returns:
//   - int: The exit code (0 for success, non-zero for errors).
func RunCalibration(ctx context.Context, out io.Writer, opts CalibrationOptions) int {
	fmt.Fprintf(out, "--- Calibration Mode: Finding the Optimal Worker Count ---\n")

	if opts.LoadProfile {
		if profile, loaded := LoadOrCreateProfile(opts.ProfilePath); loaded {
			fmt.Fprintf(out, "%sLoaded existing calibration profile%s\n", cli.ColorGreen(), cli.ColorReset())
			fmt.Fprintf(out, "Profile: %s\n", profile.String())
			fmt.Fprintf(out, "\n%s✅ Using cached calibration: %s--threads %d%s\n",
				cli.ColorGreen(), cli.ColorYellow(), profile.OptimalThreads, cli.ColorReset())
			return apperrors.ExitSuccess
		}
	}

	limit := opts.Limit
	if limit == 0 {
		limit = DefaultCalibrationLimit
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	candidates := opts.Candidates
	if len(candidates) == 0 {
		candidates = GenerateThreadCandidates()
	}
	fmt.Fprintf(out, "%sTiming %d candidates below %d on %d CPU cores%s\n",
		cli.ColorCyan(), len(candidates), limit, runtime.NumCPU(), cli.ColorReset())

	start := time.Now()
	runner := newCalibrationRunner(ctx, limit, timeout)
	results, err := runner.measure(candidates)
	if err != nil {
		fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", cli.ColorYellow(), cli.ColorReset())
		return apperrors.HandleSieveError(err, time.Since(start), out, cli.CLIColorProvider{})
	}

	winner, ok := best(results)
	if !ok {
		fmt.Fprintf(out, "\n%sCalibration failed: no valid results obtained.%s\n", cli.ColorRed(), cli.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	printCalibrationResults(out, results, winner.Threads)
	fmt.Fprintf(out, "\n%s✅ Recommendation for this machine: %s--threads %d%s\n",
		cli.ColorGreen(), cli.ColorYellow(), winner.Threads, cli.ColorReset())

	if opts.SaveProfile {
		profile := NewProfile()
		profile.OptimalThreads = winner.Threads
		profile.Measurements = results
		profile.CalibrationLimit = limit
		profile.CalibrationTime = time.Since(start).String()
		saveProfile(profile, opts.ProfilePath, out)
	}
	return apperrors.ExitSuccess
}

// AutoCalibrate returns the worker count to use when the user did not pick
// one. A valid cached profile wins; otherwise a quick calibration runs and
// its result is saved when it is conclusive.
//
// Returns:
//   - int: The calibrated worker count.
//   - bool: False when no usable measurement exists; callers then fall back
//     to runtime.NumCPU().
func AutoCalibrate(ctx context.Context, profilePath string, out io.Writer) (threads int, ok bool) {
	if threads, ok := LoadCachedCalibration(profilePath); ok {
		fmt.Fprintf(out, "%sUsing cached calibration%s: threads=%s%d%s\n",
			cli.ColorGreen(), cli.ColorReset(), cli.ColorYellow(), threads, cli.ColorReset())
		return threads, true
	}

	res, err := QuickCalibrate(ctx, GenerateQuickThreadCandidates())
	if err != nil || res.Threads == 0 {
		return 0, false
	}
	threads = ValidateThreads(res.Threads)
	printCalibrationOutput(out, threads, res)

	if res.Confidence >= 0.5 {
		profile := NewProfile()
		profile.OptimalThreads = threads
		profile.Measurements = res.Measurements
		profile.CalibrationLimit = QuickLimit
		profile.CalibrationTime = res.Duration.String()
		saveProfile(profile, profilePath, out)
	}
	return threads, true
}

// LoadCachedCalibration returns the worker count stored in a valid profile.
func LoadCachedCalibration(profilePath string) (int, bool) {
	profile, loaded := LoadOrCreateProfile(profilePath)
	if !loaded {
		return 0, false
	}
	return ValidateThreads(profile.OptimalThreads), true
}

func saveProfile(profile *CalibrationProfile, path string, out io.Writer) {
	if err := profile.SaveProfile(path); err != nil {
		fmt.Fprintf(out, "%sWarning: could not save calibration profile: %v%s\n",
			cli.ColorYellow(), err, cli.ColorReset())
		return
	}
	if path == "" {
		path = GetDefaultProfilePath()
	}
	fmt.Fprintf(out, "%sCalibration profile saved to %s%s\n", cli.ColorGreen(), path, cli.ColorReset())
}
