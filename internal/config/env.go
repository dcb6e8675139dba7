package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/primegen/internal/bignum"
	apperrors "github.com/agbru/primegen/internal/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as int, or the default value if not set
// or invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as bool, or the default value if not set.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as time.Duration, or the default value if not
// set or invalid. Accepts formats like "5m", "30s", "1h30m".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// anyFlagSet reports whether any of the aliases was set.
func anyFlagSet(fs *flag.FlagSet, names ...string) bool {
	for _, n := range names {
		if isFlagSet(fs, n) {
			return true
		}
	}
	return false
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > file > Defaults.
//
// Supported environment variables:
//   - PRIMEGEN_LIMIT: Exclusive upper bound (decimal, any size)
//   - PRIMEGEN_THREADS: Number of workers (int)
//   - PRIMEGEN_OUTPUT: Output file path (string)
//   - PRIMEGEN_COMPRESS: Output compression (string)
//   - PRIMEGEN_UPLOAD, PRIMEGEN_UPLOAD_ENDPOINT: Upload target (string)
//   - PRIMEGEN_TIMEOUT: Run timeout (duration: "5m", "30s")
//   - PRIMEGEN_PORT: Port for server mode (string)
//   - PRIMEGEN_LOG_LEVEL: Minimum log level (string)
//   - PRIMEGEN_CALIBRATION_PROFILE: Path to calibration profile (string)
//   - PRIMEGEN_SORTED, PRIMEGEN_VERIFY, PRIMEGEN_SERVER, PRIMEGEN_JSON,
//     PRIMEGEN_QUIET, PRIMEGEN_INTERACTIVE, PRIMEGEN_NO_COLOR,
//     PRIMEGEN_CALIBRATE, PRIMEGEN_AUTO_CALIBRATE: Booleans (true/false, 1/0, yes/no)
//
// Returns:
//   - error: A ConfigError if PRIMEGEN_LIMIT is not a decimal number.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	if !anyFlagSet(fs, "limit", "n") {
		if val := os.Getenv(EnvPrefix + "LIMIT"); val != "" {
			limit, err := bignum.Parse(strings.TrimSpace(val))
			if err != nil {
				return apperrors.NewConfigError("invalid %sLIMIT: %v", EnvPrefix, err)
			}
			config.Limit = limit
		}
	}
	if !anyFlagSet(fs, "threads", "t") {
		config.Threads = getEnvInt("THREADS", config.Threads)
	}
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
	return nil
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !anyFlagSet(fs, "output", "o") {
		config.Output = getEnvString("OUTPUT", config.Output)
	}
	if !isFlagSet(fs, "compress") {
		config.Compress = getEnvString("COMPRESS", config.Compress)
	}
	if !isFlagSet(fs, "upload") {
		config.Upload = getEnvString("UPLOAD", config.Upload)
	}
	if !isFlagSet(fs, "upload-endpoint") {
		config.UploadEndpoint = getEnvString("UPLOAD_ENDPOINT", config.UploadEndpoint)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}
	if !isFlagSet(fs, "log-level") {
		config.LogLevel = getEnvString("LOG_LEVEL", config.LogLevel)
	}
	if !isFlagSet(fs, "calibration-profile") {
		config.CalibrationProfile = getEnvString("CALIBRATION_PROFILE", config.CalibrationProfile)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "sorted") {
		config.Sorted = getEnvBool("SORTED", config.Sorted)
	}
	if !isFlagSet(fs, "verify") {
		config.Verify = getEnvBool("VERIFY", config.Verify)
	}
	if !isFlagSet(fs, "server") {
		config.ServerMode = getEnvBool("SERVER", config.ServerMode)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !anyFlagSet(fs, "quiet", "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "interactive") {
		config.Interactive = getEnvBool("INTERACTIVE", config.Interactive)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
	if !isFlagSet(fs, "calibrate") {
		config.Calibrate = getEnvBool("CALIBRATE", config.Calibrate)
	}
	if !isFlagSet(fs, "auto-calibrate") {
		config.AutoCalibrate = getEnvBool("AUTO_CALIBRATE", config.AutoCalibrate)
	}
}
