package concbench

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTasks_CountAndRoundRobin(t *testing.T) {
	cfg := BenchmarkConfig{
		TotalTasks:    10,
		WorkloadTypes: []string{"parsing", "querying", "indexing"},
		TaskTimeout:   3 * time.Second,
	}

	tasks := GenerateTasks(cfg)
	require.Len(t, tasks, 10)

	seen := make(map[string]bool, len(tasks))
	for i, task := range tasks {
		assert.Equal(t, cfg.WorkloadTypes[i%3], task.Type, "task %d type", i)
		assert.Equal(t, task.Type, task.Payload.Workload(), "task %d payload tag", i)
		assert.Equal(t, cfg.TaskTimeout, task.Timeout, "task %d timeout", i)

		assert.False(t, seen[task.ID], "duplicate task id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestGenerateTasks_RequirementRanges(t *testing.T) {
	cfg := BenchmarkConfig{TotalTasks: 200, WorkloadTypes: []string{"parsing"}}

	for _, task := range GenerateTasks(cfg) {
		req := task.Requirements
		assert.GreaterOrEqual(t, req.MemoryMB, taskMemoryMinMB)
		assert.LessOrEqual(t, req.MemoryMB, taskMemoryMaxMB)
		assert.GreaterOrEqual(t, req.CPUPercent, taskCPUMinPercent)
		assert.LessOrEqual(t, req.CPUPercent, taskCPUMaxPercent)
		assert.GreaterOrEqual(t, task.Priority, 1)
		assert.LessOrEqual(t, task.Priority, taskPriorityLevels)
		assert.LessOrEqual(t, len(req.SharedResources), len(sharedResourceNames))
		for _, r := range req.SharedResources {
			assert.Contains(t, sharedResourceNames, r)
		}
	}
}

func TestGenerateTasks_DefaultsToParsing(t *testing.T) {
	tasks := GenerateTasks(BenchmarkConfig{TotalTasks: 5})
	require.Len(t, tasks, 5)
	for _, task := range tasks {
		assert.Equal(t, "parsing", task.Type)
	}
}

func TestGenerateTasks_ZeroTasks(t *testing.T) {
	assert.Empty(t, GenerateTasks(BenchmarkConfig{TotalTasks: 0}))
}

func TestPayloadFor_Variants(t *testing.T) {
	assert.IsType(t, ParsePayload{}, payloadFor("parsing", 0))
	assert.IsType(t, QueryPayload{}, payloadFor("querying", 0))
	assert.IsType(t, IndexPayload{}, payloadFor("indexing", 0))

	generic := payloadFor("compression", 0)
	require.IsType(t, GenericPayload{}, generic)
	assert.Equal(t, "compression", generic.Workload())
}

func TestCostFactor(t *testing.T) {
	assert.Equal(t, 3.0, costFactor("indexing"))
	assert.Equal(t, 2.0, costFactor("parsing"))
	assert.Equal(t, 1.5, costFactor("querying"))
	assert.Equal(t, 1.0, costFactor("compression"))
}

func TestWorkerTask_JSONTimeoutInMillis(t *testing.T) {
	task := WorkerTask{
		ID:      "task-1",
		Type:    "querying",
		Payload: QueryPayload{Query: "q", TopK: 5},
		Timeout: 3 * time.Second,
	}

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(3000), decoded["timeoutMs"])
}
