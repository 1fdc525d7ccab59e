// Command concbench runs the concurrency benchmark harness from the command
// line and reports the result as a console summary or JSON.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/alexshd/concbench"
)

var flags struct {
	maxWorkers    int
	workers       []int
	tasks         int
	workloads     []string
	taskTimeout   time.Duration
	minThroughput float64
	simulated     bool
	jsonOut       bool
	verbose       bool
}

func main() {
	root := &cobra.Command{
		Use:   "concbench",
		Short: "Benchmark synthetic workloads under shared-resource pressure",
		Long: "concbench drives synthetic parsing/querying/indexing workloads across a\n" +
			"ladder of worker counts and reports throughput, latency, and memory scaling\n" +
			"together with detected contention, deadlocks, and thread-safety violations.",
		SilenceUsage: true,
		RunE:         run,
	}

	root.Flags().IntVar(&flags.maxWorkers, "max-workers", 8, "upper bound on any level's worker count")
	root.Flags().IntSliceVar(&flags.workers, "workers", []int{1, 2, 4, 8}, "worker counts to test, in order")
	root.Flags().IntVar(&flags.tasks, "tasks", 100, "synthetic task pool size per level")
	root.Flags().StringSliceVar(&flags.workloads, "workloads", []string{"parsing", "querying", "indexing"}, "workload types cycled across the pool")
	root.Flags().DurationVar(&flags.taskTimeout, "task-timeout", 10*time.Second, "per-task lock wait budget before a deadlock is declared")
	root.Flags().Float64Var(&flags.minThroughput, "min-throughput", 10, "tasks/sec target used by the scorer")
	root.Flags().BoolVar(&flags.simulated, "simulated", false, "use fast simulated execution instead of realistic work durations")
	root.Flags().BoolVar(&flags.jsonOut, "json", false, "emit the full result as JSON")
	root.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log per-level progress")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	))

	cfg := concbench.BenchmarkConfig{
		MaxWorkers:    flags.maxWorkers,
		WorkerCounts:  flags.workers,
		TotalTasks:    flags.tasks,
		WorkloadTypes: flags.workloads,
		TaskTimeout:   flags.taskTimeout,
		MinThroughput: flags.minThroughput,
	}
	if flags.simulated {
		cfg.Mode = concbench.ExecutionModeSimulated
	}

	result, err := concbench.RunConcurrencyBenchmarks(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if flags.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printSummary(result)
	return nil
}

func printSummary(result *concbench.BenchmarkResult) {
	fmt.Printf("Tasks: %d total, %d successful, %d failed\n",
		result.TotalTasks, result.SuccessfulTasks, result.FailedTasks)
	fmt.Printf("Throughput: %.1f tasks/sec (avg)   Latency: %.2f ms (avg)\n",
		result.AverageThroughput, result.AverageDurationMs)
	fmt.Printf("Peak memory: %.1f MB   Avg CPU demand: %.0f%%\n",
		float64(result.PeakMemoryBytes)/(1<<20), result.AverageCPUPercent)
	fmt.Printf("Events: %d contentions, %d deadlocks, %d thread-safety violations\n",
		result.ResourceContentions, result.DeadlocksDetected, result.ThreadSafetyViolations)

	fmt.Println("\nScaling:")
	fmt.Println("  N    Throughput    Latency(ms)")
	for i, p := range result.Scalability.ThroughputScaling {
		marker := " "
		if p.WorkerCount == result.Scalability.OptimalWorkerCount {
			marker = "*"
		}
		latency := 0.0
		if i < len(result.Scalability.LatencyScaling) {
			latency = result.Scalability.LatencyScaling[i].Value
		}
		fmt.Printf("%s %-4d %11.2f   %11.2f\n", marker, p.WorkerCount, p.Value, latency)
	}

	fmt.Printf("\nOptimal workers: %d\n", result.Scalability.OptimalWorkerCount)
	fmt.Printf("Score: %.1f/100 (targets met: %v)\n", result.PerformanceScore, result.MeetsPerformanceTarget)

	for _, w := range result.Warnings {
		fmt.Println("WARN:", w)
	}
	for _, r := range result.Recommendations {
		fmt.Println("RECOMMEND:", r)
	}
	for _, e := range result.Errors {
		fmt.Println("ERROR:", e)
	}
}
