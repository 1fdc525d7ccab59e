package concbench

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Fixed namespace of shared resources tasks may contend on.
var sharedResourceNames = []string{"database", "file_system", "memory_cache"}

// Synthetic demand ranges and the per-resource inclusion probability.
// Benchmarks are inherently stochastic; only task count and type distribution
// are exact.
const (
	taskMemoryMinMB     = 50
	taskMemoryMaxMB     = 150
	taskCPUMinPercent   = 25
	taskCPUMaxPercent   = 75
	resourceShareChance = 0.3
	taskPriorityLevels  = 3
)

// ResourceRequirements describes a task's simulated demands.
type ResourceRequirements struct {
	MemoryMB        int      `json:"memoryMB"`
	CPUPercent      int      `json:"cpuPercent"`
	SharedResources []string `json:"sharedResources"`
}

// TaskPayload is the tagged-union payload carried by a WorkerTask, one
// variant per workload type.
type TaskPayload interface {
	// Workload returns the workload tag this payload belongs to.
	Workload() string
}

// ParsePayload simulates an AST-parsing batch.
type ParsePayload struct {
	Files       int `json:"files"`
	TotalSizeKB int `json:"totalSizeKB"`
}

// Workload implements TaskPayload.
func (ParsePayload) Workload() string { return "parsing" }

// QueryPayload simulates a vector-search query.
type QueryPayload struct {
	Query string `json:"query"`
	TopK  int    `json:"topK"`
}

// Workload implements TaskPayload.
func (QueryPayload) Workload() string { return "querying" }

// IndexPayload simulates an embedding/index update batch.
type IndexPayload struct {
	Documents int `json:"documents"`
	BatchSize int `json:"batchSize"`
}

// Workload implements TaskPayload.
func (IndexPayload) Workload() string { return "indexing" }

// GenericPayload is the fallback variant for workload tags outside the
// built-in set.
type GenericPayload struct {
	Kind  string `json:"kind"`
	Units int    `json:"units"`
}

// Workload implements TaskPayload.
func (p GenericPayload) Workload() string { return p.Kind }

// WorkerTask is one unit of synthetic work. Immutable after generation,
// consumed exactly once by the executor.
type WorkerTask struct {
	ID           string               `json:"id"`
	Type         string               `json:"type"`
	Payload      TaskPayload          `json:"payload"`
	Priority     int                  `json:"priority"` // 1..3
	Timeout      time.Duration        `json:"-"`
	Requirements ResourceRequirements `json:"resourceRequirements"`
}

// MarshalJSON reports the timeout in whole milliseconds rather than Duration
// nanoseconds.
func (t WorkerTask) MarshalJSON() ([]byte, error) {
	type plain WorkerTask
	return json.Marshal(struct {
		plain
		TimeoutMs int64 `json:"timeoutMs"`
	}{plain(t), t.Timeout.Milliseconds()})
}

// GenerateTasks produces exactly cfg.TotalTasks synthetic tasks, cycling
// workload types round-robin by index. Pure generation, no side effects.
func GenerateTasks(cfg BenchmarkConfig) []WorkerTask {
	types := cfg.WorkloadTypes
	if len(types) == 0 {
		types = []string{"parsing"}
	}

	tasks := make([]WorkerTask, 0, cfg.TotalTasks)
	for i := 0; i < cfg.TotalTasks; i++ {
		workload := types[i%len(types)]
		tasks = append(tasks, WorkerTask{
			ID:       uuid.NewString(),
			Type:     workload,
			Payload:  payloadFor(workload, i),
			Priority: 1 + rand.Intn(taskPriorityLevels),
			Timeout:  cfg.TaskTimeout,
			Requirements: ResourceRequirements{
				MemoryMB:        taskMemoryMinMB + rand.Intn(taskMemoryMaxMB-taskMemoryMinMB+1),
				CPUPercent:      taskCPUMinPercent + rand.Intn(taskCPUMaxPercent-taskCPUMinPercent+1),
				SharedResources: chooseSharedResources(),
			},
		})
	}
	return tasks
}

// payloadFor builds the payload variant matching a workload tag.
func payloadFor(workload string, seq int) TaskPayload {
	switch workload {
	case "parsing":
		return ParsePayload{
			Files:       1 + rand.Intn(20),
			TotalSizeKB: 16 + rand.Intn(512),
		}
	case "querying":
		return QueryPayload{
			Query: fmt.Sprintf("synthetic query %d", seq),
			TopK:  5 + rand.Intn(20),
		}
	case "indexing":
		return IndexPayload{
			Documents: 10 + rand.Intn(100),
			BatchSize: 10 + rand.Intn(40),
		}
	default:
		return GenericPayload{Kind: workload, Units: 1 + rand.Intn(50)}
	}
}

// chooseSharedResources picks a probabilistic subset of the resource
// namespace. Inclusion is independent per resource.
func chooseSharedResources() []string {
	var chosen []string
	for _, name := range sharedResourceNames {
		if rand.Float64() < resourceShareChance {
			chosen = append(chosen, name)
		}
	}
	return chosen
}

// costFactor scales simulated work duration by workload type. Indexing is the
// most expensive operation in the surrounding system, querying the cheapest.
func costFactor(workload string) float64 {
	switch workload {
	case "indexing":
		return 3.0
	case "parsing":
		return 2.0
	case "querying":
		return 1.5
	default:
		return 1.0
	}
}
