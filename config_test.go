package concbench

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// TestValidate_RejectsZeroMaxWorkers verifies the construction-time invariant
// maxWorkers > 0.
func TestValidate_RejectsZeroMaxWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWorkers = 0
	cfg.WorkerCounts = nil

	_, err := NewHarness(cfg)
	if err == nil {
		t.Fatal("expected error for maxWorkers=0")
	}
	if KindOf(err) != FailureInvalidConfiguration {
		t.Errorf("expected INVALID_CONFIGURATION, got %q", KindOf(err))
	}
}

// TestValidate_RejectsNegativeTotalTasks verifies totalTasks >= 0.
func TestValidate_RejectsNegativeTotalTasks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TotalTasks = -1

	_, err := NewHarness(cfg)
	if err == nil {
		t.Fatal("expected error for totalTasks=-1")
	}
	if KindOf(err) != FailureInvalidConfiguration {
		t.Errorf("expected INVALID_CONFIGURATION, got %q", KindOf(err))
	}
}

// TestValidate_RejectsWorkerCountAboveMax verifies every configured level is
// bounded by maxWorkers.
func TestValidate_RejectsWorkerCountAboveMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWorkers = 4
	cfg.WorkerCounts = []int{1, 2, 8}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for workerCount 8 > maxWorkers 4")
	}
}

// TestValidate_RejectsNonPositiveWorkerCount verifies a zero or negative
// level is a construction-time failure: the harness is never built and no
// level executes.
func TestValidate_RejectsNonPositiveWorkerCount(t *testing.T) {
	levelsRun := 0
	cfg := BenchmarkConfig{
		MaxWorkers:   4,
		WorkerCounts: []int{2, 0},
		TotalTasks:   10,
		OnLevelComplete: func(ConcurrencyLevelMetrics) {
			levelsRun++
		},
	}

	_, err := NewHarness(cfg)
	if err == nil {
		t.Fatal("expected error for workerCount 0")
	}
	if KindOf(err) != FailureInvalidConfiguration {
		t.Errorf("expected INVALID_CONFIGURATION, got %q", KindOf(err))
	}
	if levelsRun != 0 {
		t.Errorf("%d levels ran before the config was rejected", levelsRun)
	}

	cfg.WorkerCounts = []int{-1}
	if err := cfg.Validate(); KindOf(err) != FailureInvalidConfiguration {
		t.Errorf("expected INVALID_CONFIGURATION for workerCount -1, got %v", err)
	}
}

// TestValidate_ErrorMatching verifies errors.Is matching by failure kind.
func TestValidate_ErrorMatching(t *testing.T) {
	cfg := BenchmarkConfig{MaxWorkers: -3}
	err := cfg.Validate()

	if !errors.Is(err, &BenchError{Kind: FailureInvalidConfiguration}) {
		t.Errorf("errors.Is did not match INVALID_CONFIGURATION: %v", err)
	}
	if errors.Is(err, &BenchError{Kind: FailureDeadlockDetected}) {
		t.Error("errors.Is matched the wrong kind")
	}
}

// TestNewHarness_AppliesDefaults verifies optional fields are filled at
// construction.
func TestNewHarness_AppliesDefaults(t *testing.T) {
	h, err := NewHarness(BenchmarkConfig{MaxWorkers: 8, TotalTasks: 10})
	if err != nil {
		t.Fatalf("NewHarness failed: %v", err)
	}
	defer h.Shutdown()

	cfg := h.Config()
	if cfg.TaskTimeout != 10*time.Second {
		t.Errorf("default TaskTimeout: got %v, want 10s", cfg.TaskTimeout)
	}
	if cfg.MinThroughput != 10 {
		t.Errorf("default MinThroughput: got %v, want 10", cfg.MinThroughput)
	}
	if cfg.Mode != ExecutionModeReal {
		t.Errorf("default Mode: got %q, want %q", cfg.Mode, ExecutionModeReal)
	}

	// Derived levels double up to maxWorkers.
	want := []int{1, 2, 4, 8}
	if len(cfg.WorkerCounts) != len(want) {
		t.Fatalf("derived WorkerCounts: got %v, want %v", cfg.WorkerCounts, want)
	}
	for i, n := range want {
		if cfg.WorkerCounts[i] != n {
			t.Errorf("derived WorkerCounts[%d]: got %d, want %d", i, cfg.WorkerCounts[i], n)
		}
	}
}

// TestBenchmarkConfig_JSONTimeoutInMillis verifies the config echo reports
// the timeout as milliseconds under its Ms-suffixed key.
func TestBenchmarkConfig_JSONTimeoutInMillis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TaskTimeout = 10 * time.Second

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"taskTimeoutMs":10000`) {
		t.Errorf("config JSON missing taskTimeoutMs in millis: %s", data)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got := decoded["taskTimeoutMs"]; got != float64(10000) {
		t.Errorf("taskTimeoutMs = %v, want 10000", got)
	}
}
