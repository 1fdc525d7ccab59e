package concbench

import (
	"context"
	"fmt"
)

// RunConcurrencyBenchmarks is the top-level entry point: build a harness,
// run every configured level, and return the aggregate result. The harness
// is shut down before returning.
func RunConcurrencyBenchmarks(ctx context.Context, cfg BenchmarkConfig) (*BenchmarkResult, error) {
	h, err := NewHarness(cfg)
	if err != nil {
		return nil, err
	}
	defer h.Shutdown()

	return h.Run(ctx)
}

// Run executes the benchmark across every configured worker count, in order,
// and derives the scaling curves and final score. A fresh task pool is
// generated per level so every task is consumed exactly once.
//
// Fatal errors (invalid configuration, a broken execution substrate,
// cancellation of ctx) abort the run with no partial results. Task-level
// failures never surface here; they are visible only in aggregate counts.
func (h *Harness) Run(ctx context.Context) (*BenchmarkResult, error) {
	cfg := h.cfg

	result := &BenchmarkResult{
		Config:       cfg,
		TotalWorkers: cfg.MaxWorkers,
		Scalability: ScalabilityMetrics{
			ThroughputScaling: make([]ScalingPoint, 0, len(cfg.WorkerCounts)),
			MemoryScaling:     make([]ScalingPoint, 0, len(cfg.WorkerCounts)),
			LatencyScaling:    make([]ScalingPoint, 0, len(cfg.WorkerCounts)),
		},
		Warnings:        []string{},
		Recommendations: []string{},
		Errors:          []string{},
	}

	var (
		durationSum   float64
		throughputSum float64
		cpuSum        int64
	)

	for _, workerCount := range cfg.WorkerCounts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tasks := GenerateTasks(cfg)
		for _, task := range tasks {
			cpuSum += int64(task.Requirements.CPUPercent)
		}

		level, err := h.RunLevel(ctx, tasks, workerCount)
		if err != nil {
			return nil, err
		}

		h.logger.Info("level complete",
			"workers", workerCount,
			"successful", level.SuccessfulTasks,
			"failed", level.FailedTasks,
			"throughput", fmt.Sprintf("%.1f", level.AverageThroughput),
			"peak_concurrency", level.PeakConcurrency)
		h.notifyLevelComplete(level)

		result.Scalability.ThroughputScaling = append(result.Scalability.ThroughputScaling,
			ScalingPoint{WorkerCount: workerCount, Value: level.AverageThroughput})
		result.Scalability.MemoryScaling = append(result.Scalability.MemoryScaling,
			ScalingPoint{WorkerCount: workerCount, Value: float64(level.PeakMemoryBytes)})
		result.Scalability.LatencyScaling = append(result.Scalability.LatencyScaling,
			ScalingPoint{WorkerCount: workerCount, Value: level.AverageDurationMs})

		result.TotalTasks += int64(len(tasks))
		result.SuccessfulTasks += level.SuccessfulTasks
		result.FailedTasks += level.FailedTasks
		result.ResourceContentions += level.ResourceContentions
		result.DeadlocksDetected += level.DeadlocksDetected
		result.ThreadSafetyViolations += level.ThreadSafetyViolations
		if level.PeakMemoryBytes > result.PeakMemoryBytes {
			result.PeakMemoryBytes = level.PeakMemoryBytes
		}
		durationSum += level.AverageDurationMs
		throughputSum += level.AverageThroughput

		if unclassified := level.FailedTasks - level.DeadlocksDetected -
			level.ResourceContentions - level.ThreadSafetyViolations; unclassified > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"level workers=%d: %d tasks failed without classification (deadline or cancellation)",
				workerCount, unclassified))
		}
	}

	if n := len(cfg.WorkerCounts); n > 0 {
		result.AverageDurationMs = durationSum / float64(n)
		result.AverageThroughput = throughputSum / float64(n)
	}
	if result.TotalTasks > 0 {
		result.AverageCPUPercent = float64(cpuSum) / float64(result.TotalTasks)
	}
	result.Scalability.OptimalWorkerCount = optimalWorkerCount(result.Scalability.ThroughputScaling)

	scoreResult(result)
	return result, nil
}

// notifyLevelComplete fires the level callback, if still attached.
func (h *Harness) notifyLevelComplete(level ConcurrencyLevelMetrics) {
	h.mu.Lock()
	callback := h.onLevelComplete
	h.mu.Unlock()

	if callback != nil {
		callback(level)
	}
}

// optimalWorkerCount picks the worker count with maximal per-worker
// efficiency (throughput / workerCount). Points are iterated in configured
// order and only a strictly greater efficiency replaces the current best, so
// ties resolve to the smallest worker count. This rewards avoiding
// diminishing returns over raw peak throughput.
func optimalWorkerCount(points []ScalingPoint) int {
	best := -1.0
	optimal := 0
	for _, p := range points {
		if p.WorkerCount <= 0 {
			continue
		}
		if eff := p.Value / float64(p.WorkerCount); eff > best {
			best = eff
			optimal = p.WorkerCount
		}
	}
	return optimal
}
