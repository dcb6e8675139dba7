package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sys/cpu"
)

// CalibrationProfile stores the results of a calibration run together with
// the hardware it was measured on, so that a stale profile copied to another
// machine is ignored.
type CalibrationProfile struct {
	// Hardware identification
	CPUModel    string   `json:"cpu_model"`
	CPUFeatures []string `json:"cpu_features,omitempty"`
	NumCPU      int      `json:"num_cpu"`
	GOARCH      string   `json:"goarch"`
	GOOS        string   `json:"goos"`
	GoVersion   string   `json:"go_version"`
	WordSize    int      `json:"word_size"` // 32 or 64

	OptimalThreads int           `json:"optimal_threads"`
	Measurements   []Measurement `json:"measurements,omitempty"`

	CalibratedAt     time.Time `json:"calibrated_at"`
	CalibrationLimit uint64    `json:"calibration_limit"`
	CalibrationTime  string    `json:"calibration_time"`

	ProfileVersion int `json:"profile_version"`
}

// Measurement is the timing of one candidate worker count.
type Measurement struct {
	Threads  int           `json:"threads"`
	Duration time.Duration `json:"duration_ns"`
}

const (
	// CurrentProfileVersion is incremented on breaking format changes.
	CurrentProfileVersion = 1

	// DefaultProfileFileName is the profile file name in the home directory.
	DefaultProfileFileName = ".primegen_calibration.json"
)

// GetDefaultProfilePath returns the default path for the calibration profile.
// It uses the user's home directory if available, otherwise the current directory.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

// NewProfile creates a new CalibrationProfile with current hardware info.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		CPUModel:       getCPUModel(),
		CPUFeatures:    cpuFeatures(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       32 << (^uint(0) >> 63),
		CalibratedAt:   time.Now(),
		ProfileVersion: CurrentProfileVersion,
	}
}

func getCPUModel() string {
	return fmt.Sprintf("%s-%d-cores", runtime.GOARCH, runtime.NumCPU())
}

// cpuFeatures lists the instruction set extensions that change how fast the
// bitset sweeps run.
func cpuFeatures() []string {
	var f []string
	add := func(ok bool, name string) {
		if ok {
			f = append(f, name)
		}
	}
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.X86.HasBMI2, "bmi2")
	add(cpu.X86.HasPOPCNT, "popcnt")
	add(cpu.ARM64.HasASIMD, "asimd")
	add(cpu.ARM64.HasSVE, "sve")
	return f
}

// LoadProfile loads a calibration profile from path (default path if empty).
func LoadProfile(path string) (*CalibrationProfile, error) {
	if path == "" {
		path = GetDefaultProfilePath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile CalibrationProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return &profile, nil
}

// SaveProfile saves the calibration profile to path (default path if empty).
func (p *CalibrationProfile) SaveProfile(path string) error {
	if path == "" {
		path = GetDefaultProfilePath()
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// IsValid reports whether the profile was measured on hardware like the
// current one: same format version, CPU count, architecture, word size and
// CPU features.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil || p.ProfileVersion != CurrentProfileVersion {
		return false
	}
	if p.NumCPU != runtime.NumCPU() || p.GOARCH != runtime.GOARCH {
		return false
	}
	if p.WordSize != 32<<(^uint(0)>>63) {
		return false
	}
	if strings.Join(p.CPUFeatures, ",") != strings.Join(cpuFeatures(), ",") {
		return false
	}
	return p.OptimalThreads > 0
}

// IsStale checks if the profile is older than maxAge.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// String returns a human-readable summary of the profile.
func (p *CalibrationProfile) String() string {
	if p == nil {
		return "<nil profile>"
	}
	features := "none"
	if len(p.CPUFeatures) > 0 {
		features = strings.Join(p.CPUFeatures, "+")
	}
	return fmt.Sprintf(
		"CalibrationProfile{CPU: %s, Features: %s, Threads: %d, Measurements: %d, Calibrated: %s}",
		p.CPUModel, features, p.OptimalThreads, len(p.Measurements),
		p.CalibratedAt.Format(time.RFC3339),
	)
}

// LoadOrCreateProfile loads the profile at path. The boolean is false, and a
// fresh profile is returned, when the file is missing, unreadable or was
// measured on different hardware.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	profile, err := LoadProfile(path)
	if err != nil || !profile.IsValid() {
		return NewProfile(), false
	}
	return profile, true
}

// ProfileExists checks if a calibration profile exists at the given path.
func ProfileExists(path string) bool {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	_, err := os.Stat(path)
	return err == nil
}
