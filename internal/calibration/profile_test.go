package calibration

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfile(t *testing.T) {
	t.Parallel()
	p := NewProfile()

	assert.Equal(t, runtime.NumCPU(), p.NumCPU)
	assert.Equal(t, runtime.GOARCH, p.GOARCH)
	assert.Equal(t, runtime.GOOS, p.GOOS)
	assert.Equal(t, runtime.Version(), p.GoVersion)
	assert.Equal(t, CurrentProfileVersion, p.ProfileVersion)
	assert.Equal(t, 32<<(^uint(0)>>63), p.WordSize)
	assert.Equal(t, cpuFeatures(), p.CPUFeatures)
	assert.False(t, p.CalibratedAt.IsZero())
	assert.False(t, p.IsValid(), "a profile without a thread count is not usable")
}

func TestProfileSaveLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.json")

	original := NewProfile()
	original.OptimalThreads = 6
	original.Measurements = []Measurement{{Threads: 1, Duration: 90 * time.Millisecond}, {Threads: 6, Duration: 20 * time.Millisecond}}
	original.CalibrationLimit = 1_000_000
	require.NoError(t, original.SaveProfile(path))
	assert.True(t, ProfileExists(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.OptimalThreads)
	assert.Equal(t, original.Measurements, loaded.Measurements)
	assert.Equal(t, uint64(1_000_000), loaded.CalibrationLimit)
	assert.True(t, loaded.IsValid())

	got, ok := LoadOrCreateProfile(path)
	assert.True(t, ok)
	assert.Equal(t, 6, got.OptimalThreads)
}

func TestLoadProfileErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := LoadProfile(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "failed to read profile")
	assert.False(t, ProfileExists(filepath.Join(dir, "missing.json")))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0600))
	_, err = LoadProfile(bad)
	assert.ErrorContains(t, err, "failed to parse profile")

	p, ok := LoadOrCreateProfile(bad)
	assert.False(t, ok)
	assert.NotNil(t, p)
}

func TestProfileIsValid(t *testing.T) {
	t.Parallel()
	valid := func() *CalibrationProfile {
		p := NewProfile()
		p.OptimalThreads = 2
		return p
	}
	tests := []struct {
		name   string
		mutate func(*CalibrationProfile)
		want   bool
	}{
		{"valid", func(*CalibrationProfile) {}, true},
		{"old version", func(p *CalibrationProfile) { p.ProfileVersion = 0 }, false},
		{"other cpu count", func(p *CalibrationProfile) { p.NumCPU++ }, false},
		{"other arch", func(p *CalibrationProfile) { p.GOARCH = "mips" }, false},
		{"other word size", func(p *CalibrationProfile) { p.WordSize = 16 }, false},
		{"other features", func(p *CalibrationProfile) { p.CPUFeatures = append(p.CPUFeatures, "quantum") }, false},
		{"no threads", func(p *CalibrationProfile) { p.OptimalThreads = 0 }, false},
	}
	for _, tt := range tests {
		p := valid()
		tt.mutate(p)
		assert.Equal(t, tt.want, p.IsValid(), tt.name)
	}
	var nilProfile *CalibrationProfile
	assert.False(t, nilProfile.IsValid())
}

func TestProfileIsStaleAndString(t *testing.T) {
	t.Parallel()
	p := NewProfile()
	p.OptimalThreads = 3
	assert.False(t, p.IsStale(time.Hour))
	p.CalibratedAt = time.Now().Add(-48 * time.Hour)
	assert.True(t, p.IsStale(24*time.Hour))

	var nilProfile *CalibrationProfile
	assert.True(t, nilProfile.IsStale(time.Hour))
	assert.Equal(t, "<nil profile>", nilProfile.String())

	s := p.String()
	assert.True(t, strings.Contains(s, "Threads: 3"), s)
	assert.True(t, strings.HasPrefix(s, "CalibrationProfile{CPU: "), s)
}
