package concbench

import (
	"encoding/json"
	"log/slog"
	"time"
)

// ExecutionMode selects the simulated work scale. An explicit input so test
// environments opt into fast simulation instead of sniffing env vars.
type ExecutionMode string

const (
	// ExecutionModeReal uses work durations in the tens of milliseconds,
	// producing realistic lock hold times and contention windows.
	ExecutionModeReal ExecutionMode = "real"

	// ExecutionModeSimulated shrinks work durations below a millisecond so
	// full benchmark runs finish quickly under automated test runners.
	ExecutionModeSimulated ExecutionMode = "simulated"
)

// BenchmarkConfig controls a benchmark run.
type BenchmarkConfig struct {
	// MaxWorkers is the upper bound on any level's worker count. Must be > 0.
	MaxWorkers int `json:"maxWorkers"`

	// WorkerCounts lists the concurrency levels to test, in run order.
	// Every entry must be <= MaxWorkers.
	WorkerCounts []int `json:"workerCounts"`

	// TotalTasks is the synthetic task pool size per level. Must be >= 0.
	TotalTasks int `json:"totalTasks"`

	// WorkloadTypes are the workload tags cycled round-robin across the pool,
	// e.g. "parsing", "querying", "indexing".
	WorkloadTypes []string `json:"workloadTypes"`

	// TaskTimeout bounds each task's resource-lock wait; exceeding it is
	// reported as a detected deadlock. Default 10s. Serialized as whole
	// milliseconds, see MarshalJSON.
	TaskTimeout time.Duration `json:"-"`

	// MinThroughput is the tasks/sec target used by the scorer. Default 10.
	MinThroughput float64 `json:"minThroughput"`

	// Mode selects real or simulated execution. Default real.
	Mode ExecutionMode `json:"executionMode"`

	// Logger receives per-level progress. Defaults to slog.Default().
	Logger *slog.Logger `json:"-"`

	// OnLevelComplete, when set, is invoked after each level finishes, in
	// level order. Replaces event-bus style progress notification with an
	// explicit callback.
	OnLevelComplete func(ConcurrencyLevelMetrics) `json:"-"`
}

// MarshalJSON reports the task timeout under an Ms-suffixed key in whole
// milliseconds rather than Duration nanoseconds.
func (c BenchmarkConfig) MarshalJSON() ([]byte, error) {
	type plain BenchmarkConfig
	return json.Marshal(struct {
		plain
		TaskTimeoutMs int64 `json:"taskTimeoutMs"`
	}{plain(c), c.TaskTimeout.Milliseconds()})
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() BenchmarkConfig {
	return BenchmarkConfig{
		MaxWorkers:    8,
		WorkerCounts:  []int{1, 2, 4, 8},
		TotalTasks:    100,
		WorkloadTypes: []string{"parsing", "querying", "indexing"},
		TaskTimeout:   10 * time.Second,
		MinThroughput: 10,
		Mode:          ExecutionModeReal,
	}
}

// Validate checks the construction-time invariants. Violations are fatal and
// reported before any task executes.
func (c *BenchmarkConfig) Validate() error {
	if c.MaxWorkers <= 0 {
		return newInvalidConfiguration("maxWorkers must be > 0, got %d", c.MaxWorkers)
	}
	if c.TotalTasks < 0 {
		return newInvalidConfiguration("totalTasks must be >= 0, got %d", c.TotalTasks)
	}
	for _, n := range c.WorkerCounts {
		if n <= 0 {
			return newInvalidConfiguration("workerCount must be > 0, got %d", n)
		}
		if n > c.MaxWorkers {
			return newInvalidConfiguration("workerCount %d exceeds maxWorkers %d", n, c.MaxWorkers)
		}
	}
	return nil
}

// withDefaults fills unset optional fields.
func (c BenchmarkConfig) withDefaults() BenchmarkConfig {
	if c.TaskTimeout == 0 {
		c.TaskTimeout = 10 * time.Second
	}
	if c.MinThroughput == 0 {
		c.MinThroughput = 10
	}
	if c.Mode == "" {
		c.Mode = ExecutionModeReal
	}
	if len(c.WorkerCounts) == 0 {
		for n := 1; n <= c.MaxWorkers; n *= 2 {
			c.WorkerCounts = append(c.WorkerCounts, n)
		}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
