package concbench

import (
	"sync/atomic"
	"time"
)

// ConcurrencyLevelMetrics aggregates one level's outcomes. Built once per
// level, immutable after the level completes.
type ConcurrencyLevelMetrics struct {
	WorkerCount            int     `json:"workerCount"`
	SuccessfulTasks        int64   `json:"successfulTasks"`
	FailedTasks            int64   `json:"failedTasks"`
	AverageDurationMs      float64 `json:"averageDurationMs"`
	PeakConcurrency        int     `json:"peakConcurrency"`
	AverageThroughput      float64 `json:"averageThroughput"` // tasks/sec
	PeakMemoryBytes        uint64  `json:"peakMemoryUsageBytes"`
	ResourceContentions    int64   `json:"resourceContentions"`
	DeadlocksDetected      int64   `json:"deadlocksDetected"`
	ThreadSafetyViolations int64   `json:"threadSafetyViolations"`
}

// ScalingPoint is a single {workerCount, value} sample on a scalability
// curve.
type ScalingPoint struct {
	WorkerCount int     `json:"workerCount"`
	Value       float64 `json:"value"`
}

// ScalabilityMetrics holds the derived cross-level scaling curves. Points
// appear in the exact order the worker counts were configured. Never mutated
// after all levels complete.
type ScalabilityMetrics struct {
	OptimalWorkerCount int            `json:"optimalWorkerCount"`
	ThroughputScaling  []ScalingPoint `json:"throughputScaling"`
	MemoryScaling      []ScalingPoint `json:"memoryScaling"`
	LatencyScaling     []ScalingPoint `json:"latencyScaling"`
}

// BenchmarkResult is the aggregate returned to the caller. Created once per
// run, never mutated after return.
type BenchmarkResult struct {
	Config                 BenchmarkConfig    `json:"config"`
	TotalWorkers           int                `json:"totalWorkers"`
	TotalTasks             int64              `json:"totalTasks"`
	SuccessfulTasks        int64              `json:"successfulTasks"`
	FailedTasks            int64              `json:"failedTasks"`
	AverageDurationMs      float64            `json:"averageDurationMs"`
	AverageThroughput      float64            `json:"averageThroughput"`
	PeakMemoryBytes        uint64             `json:"peakMemoryUsageBytes"`
	AverageCPUPercent      float64            `json:"averageCpuPercent"`
	ResourceContentions    int64              `json:"resourceContentions"`
	DeadlocksDetected      int64              `json:"deadlocksDetected"`
	ThreadSafetyViolations int64              `json:"threadSafetyViolations"`
	Scalability            ScalabilityMetrics `json:"scalabilityMetrics"`
	MeetsPerformanceTarget bool               `json:"meetsPerformanceTargets"`
	PerformanceScore       float64            `json:"performanceScore"`
	Warnings               []string           `json:"warnings"`
	Recommendations        []string           `json:"recommendations"`
	Errors                 []string           `json:"errors"`
}

// levelCounters folds per-task outcomes while a level runs. Fields are
// updated via sync/atomic from worker goroutines.
type levelCounters struct {
	successful int64
	failed     int64
	contention int64
	deadlocks  int64
	violations int64
}

// record classifies a task outcome by failure kind. Any non-nil error
// increments failed; only taxonomy kinds increment their event counter.
// Unclassified errors (context cancellation, level deadline) count as plain
// failures.
func (c *levelCounters) record(err error) {
	if err == nil {
		atomic.AddInt64(&c.successful, 1)
		return
	}

	atomic.AddInt64(&c.failed, 1)
	switch KindOf(err) {
	case FailureDeadlockDetected:
		atomic.AddInt64(&c.deadlocks, 1)
	case FailureResourceContention:
		atomic.AddInt64(&c.contention, 1)
	case FailureThreadSafetyViolation:
		atomic.AddInt64(&c.violations, 1)
	}
}

// recordSkipped marks a task that never executed (cut off by the level
// deadline while still queued).
func (c *levelCounters) recordSkipped() {
	atomic.AddInt64(&c.failed, 1)
}

// finalize builds the level metrics from the folded counters. Division is
// guarded so an empty task list yields all-zero metrics.
func (c *levelCounters) finalize(workerCount, taskCount, peak int, elapsed time.Duration, peakMemory uint64) ConcurrencyLevelMetrics {
	m := ConcurrencyLevelMetrics{
		WorkerCount:            workerCount,
		SuccessfulTasks:        atomic.LoadInt64(&c.successful),
		FailedTasks:            atomic.LoadInt64(&c.failed),
		PeakConcurrency:        peak,
		PeakMemoryBytes:        peakMemory,
		ResourceContentions:    atomic.LoadInt64(&c.contention),
		DeadlocksDetected:      atomic.LoadInt64(&c.deadlocks),
		ThreadSafetyViolations: atomic.LoadInt64(&c.violations),
	}

	if taskCount > 0 {
		m.AverageDurationMs = float64(elapsed) / float64(time.Millisecond) / float64(taskCount)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		m.AverageThroughput = float64(m.SuccessfulTasks) / secs
	}
	return m
}
