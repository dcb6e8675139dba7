package app

import (
	"bytes"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHasVersionFlag(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"empty", nil, false},
		{"no version flag", []string{"-limit", "100"}, false},
		{"long", []string{"--version"}, true},
		{"short", []string{"-V"}, true},
		{"single dash", []string{"-version"}, true},
		{"after other flags", []string{"-limit", "100", "--version", "-threads", "4"}, true},
		{"flag value is not a flag", []string{"-o", "version"}, false},
		{"similar name", []string{"--verbose"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HasVersionFlag(tt.args); got != tt.want {
				t.Errorf("HasVersionFlag(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	PrintVersion(&buf)

	out := buf.String()
	for _, want := range []string{"primegen ", "Commit:", "Built:", runtime.Version(), runtime.GOOS + "/" + runtime.GOARCH} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintVersion output does not contain %q:\n%s", want, out)
		}
	}
}

func TestApplyBuildSettings(t *testing.T) {
	t.Parallel()
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	t.Run("placeholders are filled", func(t *testing.T) {
		t.Parallel()
		info := BuildInfo{Version: "dev", Commit: "unknown", BuildDate: "unknown", Platform: "linux/amd64"}
		applyBuildSettings(&info, bi)
		want := BuildInfo{
			Version:   "v0.3.1",
			Commit:    "0123456789ab",
			BuildDate: "2026-01-02T03:04:05Z",
			Modified:  true,
			Platform:  "linux/amd64",
		}
		if diff := cmp.Diff(want, info); diff != "" {
			t.Errorf("build info mismatch (-want +got):\n%s", diff)
		}
		if got := info.String(); got != "primegen v0.3.1 (0123456789ab-dirty, linux/amd64)" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("ldflags win", func(t *testing.T) {
		t.Parallel()
		info := BuildInfo{Version: "v1.0.0", Commit: "abc123", BuildDate: "2025-01-01"}
		applyBuildSettings(&info, bi)
		if info.Version != "v1.0.0" || info.Commit != "abc123" || info.BuildDate != "2025-01-01" {
			t.Errorf("ldflags values overwritten: %+v", info)
		}
	})

	t.Run("devel module version is ignored", func(t *testing.T) {
		t.Parallel()
		info := BuildInfo{Version: "dev"}
		applyBuildSettings(&info, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
		if info.Version != "dev" {
			t.Errorf("Version = %q, want dev", info.Version)
		}
	})
}
