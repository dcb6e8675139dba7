package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/agbru/primegen/internal/testutil"
	"github.com/agbru/primegen/internal/ui"
	"github.com/agbru/primegen/pkg/models"
)

func sampleSummary() models.RunSummary {
	return models.RunSummary{
		RunID:       "7d0f",
		Limit:       "1000000",
		Threads:     4,
		SmallPrimes: 168,
		Primes:      78498,
		Output:      "primes.txt",
		Compression: "none",
		Bytes:       616726,
		Sorted:      true,
		Stages: []models.StageResult{
			{Name: models.StageGenerate, Duration: 12 * time.Millisecond},
			{Name: models.StageSort, Duration: 3 * time.Millisecond},
			{Name: models.StageVerify, Skipped: true},
			{Name: models.StageUpload, Duration: time.Millisecond, Error: "access denied"},
		},
		Duration: 16 * time.Millisecond,
	}
}

func TestDisplayRunSummary(t *testing.T) {
	ui.InitTheme(true)
	var buf bytes.Buffer
	DisplayRunSummary(&buf, sampleSummary())
	out := testutil.StripAnsiCodes(buf.String())

	for _, want := range []string{
		"--- Run Summary ---",
		"Primes below 1,000,000 : 78,498",
		"Sieving primes  : 168",
		"primes.txt (616,726 bytes, sorted)",
		"generate",
		"12ms",
		"skipped",
		"❌ Failure (access denied)",
		"Total time: 16ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestDisplayRunSummary_Verification(t *testing.T) {
	ui.InitTheme(true)
	s := sampleSummary()
	s.Verify = &models.VerifySummary{OK: false, Composites: 2, Missing: 1}
	var buf bytes.Buffer
	DisplayRunSummary(&buf, s)
	if !strings.Contains(buf.String(), "Verification    : FAILED (duplicates 0, composites 2, missing 1") {
		t.Errorf("unexpected verification line:\n%s", buf.String())
	}

	s.Verify = &models.VerifySummary{OK: true}
	buf.Reset()
	DisplayRunSummary(&buf, s)
	if !strings.Contains(buf.String(), "Verification    : OK") {
		t.Errorf("unexpected verification line:\n%s", buf.String())
	}
}

func TestDisplayQuietSummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayQuietSummary(&buf, sampleSummary())
	if buf.String() != "78498\n" {
		t.Errorf("quiet summary = %q, want %q", buf.String(), "78498\n")
	}
}

func TestDisplayJSONSummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := DisplayJSONSummary(&buf, sampleSummary()); err != nil {
		t.Fatal(err)
	}
	var got models.RunSummary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.Primes != 78498 || len(got.Stages) != 4 || got.Stages[3].Error != "access denied" {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestPrintExecutionConfig(t *testing.T) {
	ui.InitTheme(true)
	var buf bytes.Buffer
	PrintExecutionConfig(&buf, "100000000", 8, "primes.txt.zst", "zstd")
	out := buf.String()
	if !strings.Contains(out, "Primes below 100,000,000 with 8 segment(s).") || !strings.Contains(out, "primes.txt.zst (zstd)") {
		t.Errorf("unexpected configuration output:\n%s", out)
	}
}
