package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRunSummary_Stages(t *testing.T) {
	var s RunSummary
	if err := s.AddStage(StageGenerate, time.Second, nil); err != nil {
		t.Fatalf("AddStage returned %v", err)
	}
	boom := errors.New("denied")
	if err := s.AddStage(StageUpload, time.Millisecond, boom); err != boom {
		t.Fatalf("AddStage should return its error, got %v", err)
	}
	s.SkipStage(StageSort)

	if st, ok := s.Stage(StageUpload); !ok || st.Error != "denied" {
		t.Errorf("Stage(upload) = %+v, %v", st, ok)
	}
	if st, ok := s.Stage(StageSort); !ok || !st.Skipped {
		t.Errorf("Stage(sort) = %+v, %v", st, ok)
	}
	if _, ok := s.Stage(StageVerify); ok {
		t.Error("Stage(verify) should be absent")
	}
}

func TestRunSummary_JSON(t *testing.T) {
	s := RunSummary{RunID: "r1", Limit: "100", Threads: 4, Primes: 25, Verify: &VerifySummary{OK: true, Lines: 25, Expected: 25}}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["limit"] != "100" || m["primes"].(float64) != 25 {
		t.Errorf("unexpected JSON %s", data)
	}
	if _, ok := m["uploaded_to"]; ok {
		t.Errorf("empty upload target should be omitted: %s", data)
	}
	if v := m["verify"].(map[string]any); v["ok"] != true {
		t.Errorf("unexpected verify block %v", v)
	}
}
