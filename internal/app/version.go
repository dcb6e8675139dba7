// Package app provides the core application structure for the primegen CLI.
// It handles application lifecycle, mode dispatching, and version management.
package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"slices"
)

// Build-time variables set via -ldflags, for example:
//
//	go build -ldflags="-X github.com/agbru/primegen/internal/app.Version=v1.2.3 -X github.com/agbru/primegen/internal/app.Commit=abc123"
//
// Unset values fall back to the VCS stamp embedded by the Go toolchain.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// versionFlags are accepted anywhere on the command line.
var versionFlags = []string{"--version", "-version", "-V"}

// HasVersionFlag reports whether args ask for the version, in any position
// (e.g. "primegen --server --version").
func HasVersionFlag(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		return slices.Contains(versionFlags, arg)
	})
}

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// String renders the one-line form used by logs.
func (b BuildInfo) String() string {
	commit := b.Commit
	if b.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("primegen %s (%s, %s)", b.Version, commit, b.Platform)
}

// CurrentBuild merges the -ldflags values with the module and VCS data the
// toolchain stamped into the binary.
func CurrentBuild() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&info, bi)
	}
	return info
}

// applyBuildSettings fills fields still at their placeholder value.
func applyBuildSettings(info *BuildInfo, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
				if len(info.Commit) > 12 {
					info.Commit = info.Commit[:12]
				}
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

// PrintVersion writes the multi-line version report to out.
func PrintVersion(out io.Writer) {
	info := CurrentBuild()
	fmt.Fprintf(out, "primegen %s\n", info.Version)
	fmt.Fprintf(out, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(out, "  Built:      %s\n", info.BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "  OS/Arch:    %s\n", info.Platform)
}
