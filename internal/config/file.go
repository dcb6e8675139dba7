package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agbru/primegen/internal/bignum"
	apperrors "github.com/agbru/primegen/internal/errors"
)

// FileConfig is the YAML configuration file. Absent keys leave the
// corresponding setting untouched.
//
//	limit: "100000000000"
//	threads: 8
//	output: primes.txt.zst
//	compress: zstd
//	sorted: true
//	upload: s3://my-bucket/primes/
//	timeout: 30m
type FileConfig struct {
	Limit              *string `yaml:"limit"`
	Threads            *int    `yaml:"threads"`
	Output             *string `yaml:"output"`
	Compress           *string `yaml:"compress"`
	Sorted             *bool   `yaml:"sorted"`
	Verify             *bool   `yaml:"verify"`
	Upload             *string `yaml:"upload"`
	UploadEndpoint     *string `yaml:"upload_endpoint"`
	Timeout            *string `yaml:"timeout"`
	JSON               *bool   `yaml:"json"`
	Quiet              *bool   `yaml:"quiet"`
	NoColor            *bool   `yaml:"no_color"`
	Port               *string `yaml:"port"`
	AutoCalibrate      *bool   `yaml:"auto_calibrate"`
	CalibrationProfile *string `yaml:"calibration_profile"`
	LogLevel           *string `yaml:"log_level"`
}

// LoadFile reads and decodes a YAML configuration file. Unknown keys are
// rejected.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config file: %w", err)
	}
	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

// applyFileConfig copies the file's values into config for every setting
// not given on the command line. Environment overrides run afterwards.
func applyFileConfig(config *AppConfig, fc FileConfig, fs *flag.FlagSet) error {
	if fc.Limit != nil && !anyFlagSet(fs, "limit", "n") {
		limit, err := bignum.Parse(*fc.Limit)
		if err != nil {
			return apperrors.NewConfigError("invalid limit in config file: %v", err)
		}
		config.Limit = limit
	}
	if fc.Timeout != nil && !isFlagSet(fs, "timeout") {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return apperrors.NewConfigError("invalid timeout in config file: %v", err)
		}
		config.Timeout = d
	}
	set(&config.Threads, fc.Threads, anyFlagSet(fs, "threads", "t"))
	set(&config.Output, fc.Output, anyFlagSet(fs, "output", "o"))
	set(&config.Compress, fc.Compress, isFlagSet(fs, "compress"))
	set(&config.Upload, fc.Upload, isFlagSet(fs, "upload"))
	set(&config.UploadEndpoint, fc.UploadEndpoint, isFlagSet(fs, "upload-endpoint"))
	set(&config.Port, fc.Port, isFlagSet(fs, "port"))
	set(&config.CalibrationProfile, fc.CalibrationProfile, isFlagSet(fs, "calibration-profile"))
	set(&config.LogLevel, fc.LogLevel, isFlagSet(fs, "log-level"))
	set(&config.Sorted, fc.Sorted, isFlagSet(fs, "sorted"))
	set(&config.Verify, fc.Verify, isFlagSet(fs, "verify"))
	set(&config.JSONOutput, fc.JSON, isFlagSet(fs, "json"))
	set(&config.Quiet, fc.Quiet, anyFlagSet(fs, "quiet", "q"))
	set(&config.NoColor, fc.NoColor, isFlagSet(fs, "no-color"))
	set(&config.AutoCalibrate, fc.AutoCalibrate, isFlagSet(fs, "auto-calibrate"))
	return nil
}

// set overwrites dst with the file value unless the flag was given.
func set[T any](dst *T, v *T, onCLI bool) {
	if v != nil && !onCLI {
		*dst = *v
	}
}
