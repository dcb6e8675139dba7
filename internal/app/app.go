package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/agbru/primegen/internal/calibration"
	"github.com/agbru/primegen/internal/cli"
	"github.com/agbru/primegen/internal/config"
	apperrors "github.com/agbru/primegen/internal/errors"
	"github.com/agbru/primegen/internal/logging"
	"github.com/agbru/primegen/internal/orchestration"
	"github.com/agbru/primegen/internal/output"
	"github.com/agbru/primegen/internal/server"
	"github.com/agbru/primegen/internal/service"
	"github.com/agbru/primegen/internal/ui"
)

// replMaxLimit bounds the sieves the REPL runs, since it keeps every prime
// in memory to print them.
const replMaxLimit = 100_000_000

// Application represents the primegen application instance.
// It encapsulates the configuration and provides methods to run
// the application in its various modes (sieve, server, REPL, calibration).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// ErrWriter is the writer for error output and logs (typically os.Stderr).
	ErrWriter io.Writer
	// Stdin feeds the REPL. Nil means os.Stdin.
	Stdin io.Reader
	// Stores builds upload destinations. Nil means the real backends.
	Stores orchestration.StoreFactory
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	// args[0] is program name, args[1:] are the actual arguments
	programName := "primegen"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	return &Application{Config: cfg, ErrWriter: errWriter}, nil
}

// Run executes the application based on the configured mode.
// It dispatches to the appropriate handler (completion, server, REPL,
// calibration or sieve).
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	if err := a.setupLogging(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Configuration error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.ServerMode:
		return a.runServer(ctx)
	case a.Config.Interactive:
		return a.runREPL(out)
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	default:
		return a.runSieve(ctx, out)
	}
}

// setupLogging routes diagnostic logs to ErrWriter at the configured level.
// Logs are JSON lines when the summary itself is JSON.
func (a *Application) setupLogging() error {
	level, err := logging.ParseLevel(a.Config.LogLevel)
	if err != nil {
		return err
	}
	logging.Setup(a.ErrWriter, level, !a.Config.JSONOutput)
	return nil
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	compressions := make([]string, len(output.Compressions))
	for i, c := range output.Compressions {
		compressions[i] = string(c)
	}
	if err := cli.GenerateCompletion(out, a.Config.Completion, compressions); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServer starts the HTTP server and blocks until ctx is done or a
// termination signal arrives.
func (a *Application) runServer(ctx context.Context) int {
	logger := logging.NewLogger(a.ErrWriter, "server")
	logger.Info("starting", logging.String("build", CurrentBuild().String()))
	srv, err := server.NewServer(a.Config, server.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive REPL on Stdin.
func (a *Application) runREPL(out io.Writer) int {
	threads := a.Config.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	svc, err := service.NewPrimeService(replMaxLimit, 0, threads, 0)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "REPL error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	repl := cli.NewREPL(svc, cli.REPLConfig{
		Timeout: a.Config.Timeout,
		Threads: a.Config.Threads,
	})
	in := a.Stdin
	if in == nil {
		in = os.Stdin
	}
	repl.SetInput(in)
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// runCalibration runs the full calibration mode.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	return calibration.RunCalibration(ctx, out, calibration.CalibrationOptions{
		ProfilePath: a.Config.CalibrationProfile,
		SaveProfile: true,
		Timeout:     a.Config.Timeout,
	})
}

// resolveThreads picks the worker count: the explicit --threads, else a
// cached or freshly measured calibration, else the CPU count.
func (a *Application) resolveThreads(ctx context.Context, out io.Writer) int {
	if a.Config.Threads > 0 {
		return a.Config.Threads
	}
	var calibrated int
	if a.Config.AutoCalibrate {
		if threads, ok := calibration.AutoCalibrate(ctx, a.Config.CalibrationProfile, out); ok {
			calibrated = threads
		}
	} else if threads, ok := calibration.LoadCachedCalibration(a.Config.CalibrationProfile); ok {
		calibrated = threads
	}
	return a.Config.ResolveThreads(calibrated)
}

// runSieve runs the sieve pipeline and reports its outcome.
//
// When primes go to standard output, every report and the progress display
// are written to ErrWriter instead so that out carries only primes.
func (a *Application) runSieve(ctx context.Context, out io.Writer) int {
	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	report := out
	if a.Config.ToStdout() {
		report = a.ErrWriter
	}
	info := report
	if a.Config.Quiet || a.Config.JSONOutput {
		info = io.Discard
	}

	threads := a.resolveThreads(ctx, info)
	if info != io.Discard {
		dest := a.Config.Output
		if compression, err := output.ParseCompression(a.Config.Compress); err == nil && !a.Config.ToStdout() {
			dest = output.WithExtension(dest, compression)
		}
		cli.PrintExecutionConfig(info, a.Config.Limit.String(), threads, dest, a.Config.Compress)
	}

	summary, err := orchestration.ExecuteSieve(ctx, a.Config, orchestration.RunOptions{
		Threads:  threads,
		Progress: info,
		Stdout:   out,
		Stores:   a.Stores,
	})
	return orchestration.AnalyzeRun(summary, err, a.Config, report)
}

// IsHelpError checks if the error is a help flag error (--help was used).
// This is useful for determining if the application should exit with success
// after displaying help text.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: True if the error indicates help was requested.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
