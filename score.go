package concbench

import "fmt"

// Scoring thresholds and penalties.
const (
	successRateTarget = 0.95

	deadlockScoreFactor   = 0.5
	violationScorePenalty = 10.0
	contentionPenalty     = 2.0

	throughputBonusMultiple = 1.5
	throughputBonusFactor   = 1.1
	throughputMissFactor    = 0.8

	contentionWarnFraction = 0.10
	memoryHighWaterBytes   = 512 << 20 // 512MB
)

// scoreResult validates the aggregate against the performance targets,
// computes the 0-100 score, and attaches warnings and recommendations.
// Mutates result in place; called exactly once, before the result is
// returned to the caller.
func scoreResult(result *BenchmarkResult) {
	cfg := result.Config

	successRate := 1.0
	if result.TotalTasks > 0 {
		successRate = float64(result.SuccessfulTasks) / float64(result.TotalTasks)
	}

	result.MeetsPerformanceTarget = successRate >= successRateTarget &&
		result.DeadlocksDetected == 0 &&
		result.ThreadSafetyViolations == 0 &&
		result.AverageThroughput > cfg.MinThroughput

	score := 100.0 * successRate
	if result.DeadlocksDetected > 0 {
		score *= deadlockScoreFactor
	}
	score -= violationScorePenalty * float64(result.ThreadSafetyViolations)
	score -= contentionPenalty * float64(result.ResourceContentions)
	if result.AverageThroughput > throughputBonusMultiple*cfg.MinThroughput {
		score *= throughputBonusFactor
	} else if result.AverageThroughput < cfg.MinThroughput {
		score *= throughputMissFactor
	}
	result.PerformanceScore = clampScore(score)

	advise(result)
}

// advise applies the fixed warning/recommendation rules.
func advise(result *BenchmarkResult) {
	cfg := result.Config

	if result.DeadlocksDetected > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d deadlocks detected during benchmark", result.DeadlocksDetected))
		result.Recommendations = append(result.Recommendations,
			"Acquire shared resources in a consistent order across all task types to prevent circular waits")
	}

	if result.ThreadSafetyViolations > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d thread-safety violations detected", result.ThreadSafetyViolations))
		result.Recommendations = append(result.Recommendations,
			"Add synchronization (mutex or channel ownership) around state shared between workers")
	}

	if result.TotalTasks > 0 &&
		float64(result.ResourceContentions) > contentionWarnFraction*float64(result.TotalTasks) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"resource contention affected %d of %d tasks",
			result.ResourceContentions, result.TotalTasks))
		result.Recommendations = append(result.Recommendations,
			"Pool heavily contended resources or partition them per worker to reduce lock pressure")
	}

	if optimal := result.Scalability.OptimalWorkerCount; optimal > 0 && cfg.MaxWorkers > 2*optimal {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"maxWorkers %d is more than double the optimal worker count %d; lower the pool size",
			cfg.MaxWorkers, optimal))
	}

	if result.PeakMemoryBytes > memoryHighWaterBytes {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"peak memory usage %dMB exceeds the %dMB high-water mark",
			result.PeakMemoryBytes>>20, uint64(memoryHighWaterBytes)>>20))
		result.Recommendations = append(result.Recommendations,
			"Switch to memory-efficient processing (streaming or smaller batches) for large task pools")
	}
}

// clampScore bounds a score to [0, 100].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
