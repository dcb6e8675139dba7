package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/primegen/internal/bignum"
	apperrors "github.com/agbru/primegen/internal/errors"
)

func TestParseConfig(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		cfg, err := ParseConfig("primegen", []string{}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !cfg.Limit.Equal(bignum.New(DefaultLimit)) {
			t.Errorf("Expected default limit %d, got %s", DefaultLimit, cfg.Limit)
		}
		if cfg.Threads != 0 {
			t.Errorf("Expected default threads 0, got %d", cfg.Threads)
		}
		if cfg.Output != DefaultOutput {
			t.Errorf("Expected default output %q, got %q", DefaultOutput, cfg.Output)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("Expected default timeout %v, got %v", DefaultTimeout, cfg.Timeout)
		}
		if cfg.Compress != "none" {
			t.Errorf("Expected default compression none, got %q", cfg.Compress)
		}
	})

	t.Run("ValidFlags", func(t *testing.T) {
		args := []string{
			"-limit", "340282366920938463463374607431768211457",
			"-threads", "16",
			"-o", "big.txt.zst",
			"-compress", "ZSTD",
			"-sorted",
			"-verify",
			"-timeout", "10s",
			"-upload", "s3://bucket/runs/",
			"-json",
		}
		cfg, err := ParseConfig("primegen", args, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Limit.String() != "340282366920938463463374607431768211457" {
			t.Errorf("Expected 2^128+1, got %s", cfg.Limit)
		}
		if cfg.Threads != 16 {
			t.Errorf("Expected 16 threads, got %d", cfg.Threads)
		}
		if cfg.Output != "big.txt.zst" || cfg.Compress != "zstd" {
			t.Errorf("Expected zstd output to big.txt.zst, got %q/%q", cfg.Output, cfg.Compress)
		}
		if !cfg.Sorted || !cfg.Verify || !cfg.JSONOutput {
			t.Errorf("Expected sorted, verify and json, got %+v", cfg)
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("Expected Timeout 10s, got %v", cfg.Timeout)
		}
		if cfg.Upload != "s3://bucket/runs/" {
			t.Errorf("Expected upload target, got %q", cfg.Upload)
		}
	})

	t.Run("Shorthands", func(t *testing.T) {
		cfg, err := ParseConfig("primegen", []string{"-n", "100", "-t", "4", "-q"}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Limit.String() != "100" || cfg.Threads != 4 || !cfg.Quiet {
			t.Errorf("Unexpected config %+v", cfg)
		}
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		env := map[string]string{
			"PRIMEGEN_LIMIT":               "200",
			"PRIMEGEN_THREADS":             "3",
			"PRIMEGEN_OUTPUT":              "out.txt.gz",
			"PRIMEGEN_COMPRESS":            "gzip",
			"PRIMEGEN_SORTED":              "yes",
			"PRIMEGEN_VERIFY":              "1",
			"PRIMEGEN_TIMEOUT":             "2m",
			"PRIMEGEN_PORT":                "3000",
			"PRIMEGEN_SERVER":              "true",
			"PRIMEGEN_QUIET":               "true",
			"PRIMEGEN_NO_COLOR":            "true",
			"PRIMEGEN_LOG_LEVEL":           "debug",
			"PRIMEGEN_CALIBRATION_PROFILE": "prof.json",
		}
		for k, v := range env {
			t.Setenv(k, v)
		}

		cfg, err := ParseConfig("primegen", []string{}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Limit.String() != "200" || cfg.Threads != 3 {
			t.Errorf("Expected limit 200 and 3 threads from env, got %s/%d", cfg.Limit, cfg.Threads)
		}
		if cfg.Output != "out.txt.gz" || cfg.Compress != "gzip" {
			t.Errorf("Unexpected output %q/%q", cfg.Output, cfg.Compress)
		}
		if !cfg.Sorted || !cfg.Verify || !cfg.ServerMode || !cfg.Quiet || !cfg.NoColor {
			t.Errorf("Expected booleans from env, got %+v", cfg)
		}
		if cfg.Timeout != 2*time.Minute || cfg.Port != "3000" {
			t.Errorf("Unexpected timeout/port %v/%s", cfg.Timeout, cfg.Port)
		}
		if cfg.LogLevel != "debug" || cfg.CalibrationProfile != "prof.json" {
			t.Errorf("Unexpected log level/profile %q/%q", cfg.LogLevel, cfg.CalibrationProfile)
		}
	})

	t.Run("FlagsBeatEnv", func(t *testing.T) {
		t.Setenv("PRIMEGEN_LIMIT", "200")
		t.Setenv("PRIMEGEN_THREADS", "3")
		cfg, err := ParseConfig("primegen", []string{"-limit", "50", "-t", "5"}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Limit.String() != "50" || cfg.Threads != 5 {
			t.Errorf("Expected flags to win, got %s/%d", cfg.Limit, cfg.Threads)
		}
	})

	t.Run("InvalidEnvLimit", func(t *testing.T) {
		t.Setenv("PRIMEGEN_LIMIT", "12abc")
		_, err := ParseConfig("primegen", []string{}, io.Discard)
		var cfgErr apperrors.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("Expected ConfigError, got %v", err)
		}
	})
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero limit", []string{"-limit", "0"}},
		{"negative limit", []string{"-limit", "-5"}},
		{"not a number", []string{"-limit", "1e6"}},
		{"negative threads", []string{"-threads", "-1"}},
		{"threads above limit", []string{"-limit", "3", "-threads", "4"}},
		{"zero timeout", []string{"-timeout", "0s"}},
		{"unknown compression", []string{"-compress", "brotli"}},
		{"sorted stdout", []string{"-o", "-", "-sorted"}},
		{"compressed stdout", []string{"-o", "-", "-compress", "gzip"}},
		{"unknown shell", []string{"-completion", "tcsh"}},
		{"bad log level", []string{"-log-level", "loud"}},
		{"unknown flag", []string{"-algo", "fast"}},
		{"positional argument", []string{"100"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if _, err := ParseConfig("primegen", tt.args, &stderr); err == nil {
				t.Errorf("ParseConfig(%v) succeeded, want error", tt.args)
			}
		})
	}
}

func TestParseConfig_UsageOnValidationError(t *testing.T) {
	var stderr bytes.Buffer
	_, err := ParseConfig("primegen", []string{"-limit", "0"}, &stderr)
	if err == nil {
		t.Fatal("expected error")
	}
	out := stderr.String()
	for _, want := range []string{"Configuration error: limit must be at least 1", "Usage:", "-limit", "Examples:"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage output missing %q:\n%s", want, out)
		}
	}
}

func TestParseConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "primegen.yaml")
	content := `limit: "1000000000000"
threads: 12
output: primes.txt.lz4
compress: lz4
sorted: true
timeout: 45m
upload: minio://primes/runs/
upload_endpoint: localhost:9000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("FileValues", func(t *testing.T) {
		cfg, err := ParseConfig("primegen", []string{"-config", path}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Limit.String() != "1000000000000" || cfg.Threads != 12 {
			t.Errorf("Unexpected limit/threads %s/%d", cfg.Limit, cfg.Threads)
		}
		if cfg.Compress != "lz4" || !cfg.Sorted || cfg.Timeout != 45*time.Minute {
			t.Errorf("Unexpected config %+v", cfg)
		}
		if cfg.Upload != "minio://primes/runs/" || cfg.UploadEndpoint != "localhost:9000" {
			t.Errorf("Unexpected upload %q/%q", cfg.Upload, cfg.UploadEndpoint)
		}
	})

	t.Run("Precedence", func(t *testing.T) {
		t.Setenv("PRIMEGEN_THREADS", "6")
		cfg, err := ParseConfig("primegen", []string{"-config", path, "-limit", "500"}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Limit.String() != "500" {
			t.Errorf("flag should beat file, got limit %s", cfg.Limit)
		}
		if cfg.Threads != 6 {
			t.Errorf("env should beat file, got %d threads", cfg.Threads)
		}
		if cfg.Compress != "lz4" {
			t.Errorf("file should beat default, got %q", cfg.Compress)
		}
	})

	t.Run("ConfigFromEnv", func(t *testing.T) {
		t.Setenv("PRIMEGEN_CONFIG", path)
		cfg, err := ParseConfig("primegen", []string{}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.ConfigFile != path || cfg.Threads != 12 {
			t.Errorf("Expected file from PRIMEGEN_CONFIG, got %+v", cfg)
		}
	})
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("algo: fast\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(unknown); err == nil {
		t.Error("expected error for an unknown key")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(empty); err != nil {
		t.Errorf("empty file should load, got %v", err)
	}

	badLimit := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badLimit, []byte("limit: \"ten\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseConfig("primegen", []string{"-config", badLimit}, io.Discard); err == nil {
		t.Error("expected error for a non-numeric limit")
	}
}

func TestResolveThreads(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		cfg        AppConfig
		calibrated int
		check      func(int) bool
	}{
		{"explicit", AppConfig{Limit: bignum.New(100), Threads: 7}, 3, func(n int) bool { return n == 7 }},
		{"calibrated", AppConfig{Limit: bignum.New(100)}, 3, func(n int) bool { return n == 3 }},
		{"clamped to limit", AppConfig{Limit: bignum.New(2)}, 8, func(n int) bool { return n == 2 }},
		{"cpu count", AppConfig{Limit: bignum.MustParse("100000000000000000000")}, 0, func(n int) bool { return n >= 1 }},
	}
	for _, tt := range tests {
		if got := tt.cfg.ResolveThreads(tt.calibrated); !tt.check(got) {
			t.Errorf("%s: ResolveThreads(%d) = %d", tt.name, tt.calibrated, got)
		}
	}
}
