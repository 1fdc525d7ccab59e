package concbench

import (
	"testing"
)

// Test helpers validating the structural properties every benchmark run must
// hold, independent of workload or timing. Use them against any
// BenchmarkResult or level metrics produced by a Harness.

// AssertCounterConservation verifies successful + failed task counts equal
// the pool size for a level.
func AssertCounterConservation(t *testing.T, level ConcurrencyLevelMetrics, totalTasks int) {
	t.Helper()

	if got := level.SuccessfulTasks + level.FailedTasks; got != int64(totalTasks) {
		t.Errorf("task counts not conserved: successful=%d + failed=%d = %d, want %d",
			level.SuccessfulTasks, level.FailedTasks, got, totalTasks)
	}
}

// AssertPeakConcurrencyBound verifies observed peak concurrency never exceeds
// the level's worker count.
func AssertPeakConcurrencyBound(t *testing.T, level ConcurrencyLevelMetrics) {
	t.Helper()

	if level.PeakConcurrency > level.WorkerCount {
		t.Errorf("peak concurrency %d exceeds worker count %d",
			level.PeakConcurrency, level.WorkerCount)
	}
}

// AssertScoreRange verifies the performance score is within [0, 100].
func AssertScoreRange(t *testing.T, result *BenchmarkResult) {
	t.Helper()

	if result.PerformanceScore < 0 || result.PerformanceScore > 100 {
		t.Errorf("performance score %.2f outside [0, 100]", result.PerformanceScore)
	}
}

// AssertOptimalInConfigured verifies the derived optimal worker count is one
// of the configured worker counts.
func AssertOptimalInConfigured(t *testing.T, result *BenchmarkResult) {
	t.Helper()

	for _, n := range result.Config.WorkerCounts {
		if result.Scalability.OptimalWorkerCount == n {
			return
		}
	}
	t.Errorf("optimal worker count %d not in configured worker counts %v",
		result.Scalability.OptimalWorkerCount, result.Config.WorkerCounts)
}

// AssertScalingOrder verifies each scaling curve has one point per configured
// worker count, in configured order.
func AssertScalingOrder(t *testing.T, result *BenchmarkResult) {
	t.Helper()

	curves := map[string][]ScalingPoint{
		"throughput": result.Scalability.ThroughputScaling,
		"memory":     result.Scalability.MemoryScaling,
		"latency":    result.Scalability.LatencyScaling,
	}
	for name, points := range curves {
		if len(points) != len(result.Config.WorkerCounts) {
			t.Errorf("%s scaling has %d points, want %d", name, len(points), len(result.Config.WorkerCounts))
			continue
		}
		for i, p := range points {
			if p.WorkerCount != result.Config.WorkerCounts[i] {
				t.Errorf("%s scaling point %d has workerCount %d, want %d",
					name, i, p.WorkerCount, result.Config.WorkerCounts[i])
			}
		}
	}
}

// PrintScalingAnalysis outputs the per-level scaling table to the test log.
func PrintScalingAnalysis(t *testing.T, result *BenchmarkResult) {
	t.Helper()

	t.Logf("\n=== Scaling Analysis ===")
	t.Logf("  N    Throughput    Latency(ms)   Efficiency")
	t.Logf("  --   -----------   -----------   ----------")
	for i, p := range result.Scalability.ThroughputScaling {
		efficiency := p.Value / float64(p.WorkerCount)
		marker := " "
		if p.WorkerCount == result.Scalability.OptimalWorkerCount {
			marker = "*"
		}
		latency := 0.0
		if i < len(result.Scalability.LatencyScaling) {
			latency = result.Scalability.LatencyScaling[i].Value
		}
		t.Logf("%s %-4d %11.2f   %11.2f   %10.2f", marker, p.WorkerCount, p.Value, latency, efficiency)
	}

	t.Logf("\nOptimal workers: %d", result.Scalability.OptimalWorkerCount)
	t.Logf("Score: %.1f/100 (targets met: %v)", result.PerformanceScore, result.MeetsPerformanceTarget)
	t.Logf("Events: contentions=%d deadlocks=%d violations=%d",
		result.ResourceContentions, result.DeadlocksDetected, result.ThreadSafetyViolations)
	for _, w := range result.Warnings {
		t.Logf("  warn: %s", w)
	}
	for _, r := range result.Recommendations {
		t.Logf("  rec:  %s", r)
	}
}
