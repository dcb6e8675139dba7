// Package config builds the primegen run configuration from command-line
// flags, PRIMEGEN_* environment variables and an optional YAML file, and
// validates it.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/agbru/primegen/internal/bignum"
	apperrors "github.com/agbru/primegen/internal/errors"
	"github.com/agbru/primegen/internal/output"
)

const (
	// EnvPrefix is the prefix of every environment variable read by primegen.
	EnvPrefix = "PRIMEGEN_"
)

// Default configuration values.
const (
	// DefaultLimit is the default exclusive upper bound of a sieve run.
	DefaultLimit uint64 = 1_000_000
	// DefaultTimeout bounds a whole run, upload included.
	DefaultTimeout = 10 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultOutput is the default output file name.
	DefaultOutput = "primes.txt"
	// DefaultLogLevel is the default minimum log level.
	DefaultLogLevel = "info"
)

// AppConfig aggregates the settings of one primegen invocation.
type AppConfig struct {
	// Limit is the exclusive upper bound: every prime below it is written.
	Limit bignum.Nat
	// Threads is the number of segments and workers. Zero selects a value
	// from the calibration profile or the CPU count (see ResolveThreads).
	Threads int
	// Output is the destination file path. "-" writes to standard output.
	Output string
	// Compress selects the output compression (none, gzip, zstd, lz4).
	Compress string
	// Sorted rewrites the output in ascending order once the sieve is done.
	Sorted bool
	// Verify audits the written output against an independent sieve.
	Verify bool
	// Upload is an optional destination the finished file is copied to:
	// a directory, s3://bucket/prefix or minio://bucket/prefix.
	Upload string
	// UploadEndpoint overrides the S3 endpoint, or names the MinIO server.
	UploadEndpoint string
	// Timeout bounds the whole run.
	Timeout time.Duration
	// JSONOutput prints the run summary as JSON.
	JSONOutput bool
	// Quiet suppresses progress and informational output.
	Quiet bool
	// NoColor disables ANSI colors. NO_COLOR is honored too.
	NoColor bool
	// ServerMode starts the HTTP server instead of running a sieve.
	ServerMode bool
	// Port is the server's listen port.
	Port string
	// Interactive starts the arithmetic REPL.
	Interactive bool
	// Completion prints a shell completion script (bash, zsh, fish,
	// powershell) and exits.
	Completion string
	// Calibrate benchmarks thread counts and saves a profile.
	Calibrate bool
	// AutoCalibrate runs a quick calibration before a sieve when no profile
	// is cached and Threads is zero.
	AutoCalibrate bool
	// CalibrationProfile is the profile path. Empty means
	// ~/.primegen_calibration.json.
	CalibrationProfile string
	// LogLevel is the minimum level of diagnostic logs on stderr.
	LogLevel string
	// ConfigFile is the YAML file the configuration was merged from.
	ConfigFile string
}

// ToStdout reports whether primes go to standard output.
func (c AppConfig) ToStdout() bool {
	return c.Output == "-"
}

// ResolveThreads returns the worker count for a run. An explicit Threads
// wins; otherwise the calibrated value is used when positive, else the CPU
// count. The result never exceeds the number of values below Limit.
func (c AppConfig) ResolveThreads(calibrated int) int {
	threads := c.Threads
	if threads <= 0 {
		threads = calibrated
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
		if v, ok := c.Limit.Uint64(); ok && uint64(threads) > v {
			threads = int(v)
		}
	}
	return max(threads, 1)
}

// Validate checks the semantic consistency of the configuration.
//
// Returns:
//   - error: A ConfigError if the configuration is invalid, nil otherwise.
func (c AppConfig) Validate() error {
	if c.Limit.IsZero() {
		return apperrors.NewConfigError("limit must be at least 1")
	}
	if c.Threads < 0 {
		return apperrors.NewConfigError("threads cannot be negative: %d", c.Threads)
	}
	if c.Threads > 0 && bignum.New(uint64(c.Threads)).Greater(c.Limit) {
		return apperrors.NewConfigError("threads (%d) cannot exceed limit (%s)", c.Threads, c.Limit)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if _, err := output.ParseCompression(c.Compress); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if c.ToStdout() && (c.Sorted || c.Verify || c.Upload != "") {
		return apperrors.NewConfigError("--sorted, --verify and --upload need a file output, not stdout")
	}
	if c.ToStdout() && c.Compress != "" && c.Compress != "none" {
		return apperrors.NewConfigError("compression is not supported on stdout")
	}
	switch c.Completion {
	case "", "bash", "zsh", "fish", "powershell":
	default:
		return apperrors.NewConfigError("unsupported shell for completion: %q", c.Completion)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return apperrors.NewConfigError("invalid log level %q", c.LogLevel)
	}
	return nil
}

// ParseConfig parses the command-line arguments into an AppConfig, merges
// the environment and the optional YAML file, then validates the result.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: An error if flag parsing, file loading or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{Limit: bignum.New(DefaultLimit)}
	fs.TextVar(&config.Limit, "limit", bignum.New(DefaultLimit), "Exclusive upper bound: every prime below it is written (arbitrary precision).")
	fs.TextVar(&config.Limit, "n", bignum.New(DefaultLimit), "Alias for -limit.")
	fs.IntVar(&config.Threads, "threads", 0, "Number of segments sieved concurrently (0 = calibrated or CPU count).")
	fs.IntVar(&config.Threads, "t", 0, "Number of threads (shorthand).")
	fs.StringVar(&config.Output, "output", DefaultOutput, "Output file path, or - for stdout.")
	fs.StringVar(&config.Output, "o", DefaultOutput, "Output file path (shorthand).")
	fs.StringVar(&config.Compress, "compress", "none", "Output compression: none, gzip, zstd or lz4.")
	fs.BoolVar(&config.Sorted, "sorted", false, "Rewrite the output in ascending order after sieving.")
	fs.BoolVar(&config.Verify, "verify", false, "Audit the output file against an independent sieve (limit <= 2^31).")
	fs.StringVar(&config.Upload, "upload", "", "Copy the finished file to a directory, s3://bucket/prefix or minio://bucket/prefix.")
	fs.StringVar(&config.UploadEndpoint, "upload-endpoint", "", "Custom S3 endpoint URL, or MinIO host:port.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the run.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Print the run summary in JSON format.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start the interactive big-number REPL.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish, powershell).")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Benchmark thread counts and save a calibration profile.")
	fs.BoolVar(&config.AutoCalibrate, "auto-calibrate", false, "Run a quick calibration when no profile is cached.")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path to calibration profile file (default: ~/.primegen_calibration.json).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Minimum log level: debug, info, warn, error or disabled.")
	fs.StringVar(&config.ConfigFile, "config", "", "YAML configuration file (flags and PRIMEGEN_* variables take precedence).")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errorWriter, "Unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments")
	}

	if !isFlagSet(fs, "config") {
		config.ConfigFile = getEnvString("CONFIG", config.ConfigFile)
	}
	if config.ConfigFile != "" {
		file, err := LoadFile(config.ConfigFile)
		if err != nil {
			fmt.Fprintln(errorWriter, "Configuration error:", err)
			return AppConfig{}, apperrors.NewConfigError("%v", err)
		}
		if err := applyFileConfig(&config, file, fs); err != nil {
			fmt.Fprintln(errorWriter, "Configuration error:", err)
			return AppConfig{}, err
		}
	}

	// Apply environment variable overrides for flags not explicitly set
	if err := applyEnvOverrides(&config, fs); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, err
	}

	config.Compress = strings.ToLower(config.Compress)
	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		var cfgErr apperrors.ConfigError
		if errors.As(err, &cfgErr) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.NewConfigError("invalid configuration")
	}
	return config, nil
}
