// Package models defines the records primegen emits for other programs:
// the run summary printed with --json and the log-friendly stage timings.
package models

import (
	"time"
)

// Stage names, in execution order.
const (
	StageGenerate = "generate"
	StageSort     = "sort"
	StageVerify   = "verify"
	StageUpload   = "upload"
)

// StageResult records one step of a run.
type StageResult struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
}

// VerifySummary is the outcome of an output audit.
type VerifySummary struct {
	OK         bool  `json:"ok"`
	Lines      int64 `json:"lines"`
	Expected   int64 `json:"expected"`
	Duplicates int64 `json:"duplicates"`
	Composites int64 `json:"composites"`
	Missing    int64 `json:"missing"`
	Malformed  int64 `json:"malformed"`
	OutOfRange int64 `json:"out_of_range"`
}

// RunSummary describes a finished (or failed) sieve run.
type RunSummary struct {
	RunID       string         `json:"run_id"`
	Limit       string         `json:"limit"`
	Threads     int            `json:"threads"`
	SmallPrimes int            `json:"small_primes"`
	Primes      int64          `json:"primes"`
	Output      string         `json:"output"`
	Compression string         `json:"compression"`
	Bytes       int64          `json:"bytes"`
	Sorted      bool           `json:"sorted"`
	UploadedTo  string         `json:"uploaded_to,omitempty"`
	Verify      *VerifySummary `json:"verify,omitempty"`
	Stages      []StageResult  `json:"stages"`
	Duration    time.Duration  `json:"duration_ns"`
	StartedAt   time.Time      `json:"started_at"`
	Error       string         `json:"error,omitempty"`
}

// AddStage appends a stage record and returns err unchanged.
func (s *RunSummary) AddStage(name string, d time.Duration, err error) error {
	st := StageResult{Name: name, Duration: d}
	if err != nil {
		st.Error = err.Error()
	}
	s.Stages = append(s.Stages, st)
	return err
}

// SkipStage records a stage that was not requested.
func (s *RunSummary) SkipStage(name string) {
	s.Stages = append(s.Stages, StageResult{Name: name, Skipped: true})
}

// Stage returns the record of the named stage.
func (s *RunSummary) Stage(name string) (StageResult, bool) {
	for _, st := range s.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return StageResult{}, false
}
