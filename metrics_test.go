package concbench

import (
	"context"
	"testing"
	"time"
)

// TestLevelCounters_FinalizeSubMillisecondLevel verifies average duration
// keeps fractional milliseconds; a fast simulated level must not flatten the
// latency curve to zero.
func TestLevelCounters_FinalizeSubMillisecondLevel(t *testing.T) {
	var c levelCounters
	c.record(nil)
	c.record(nil)

	m := c.finalize(2, 2, 2, 500*time.Microsecond, 0)

	if m.AverageDurationMs != 0.25 {
		t.Errorf("average duration = %v ms, want 0.25", m.AverageDurationMs)
	}
	if m.AverageThroughput <= 0 {
		t.Errorf("throughput = %v, want > 0", m.AverageThroughput)
	}
}

func TestLevelCounters_FinalizeEmptyLevel(t *testing.T) {
	var c levelCounters

	m := c.finalize(4, 0, 0, 0, 0)

	if m.AverageDurationMs != 0 || m.AverageThroughput != 0 {
		t.Errorf("empty level produced nonzero averages: %+v", m)
	}
}

// TestRecord_ClassifiesByKind verifies outcome classification: taxonomy kinds
// land on their counters, unclassified errors count as plain failures.
func TestRecord_ClassifiesByKind(t *testing.T) {
	var c levelCounters
	c.record(nil)
	c.record(newDeadlockDetected("database", "task-1", time.Second))
	c.record(newResourceContention("database", "task-2"))
	c.record(newThreadSafetyViolation("task-3"))
	c.record(context.DeadlineExceeded)
	c.recordSkipped()

	m := c.finalize(1, 6, 1, time.Second, 0)

	if m.SuccessfulTasks != 1 || m.FailedTasks != 5 {
		t.Errorf("successful=%d failed=%d, want 1/5", m.SuccessfulTasks, m.FailedTasks)
	}
	if m.DeadlocksDetected != 1 || m.ResourceContentions != 1 || m.ThreadSafetyViolations != 1 {
		t.Errorf("event counters = %d/%d/%d, want 1/1/1",
			m.DeadlocksDetected, m.ResourceContentions, m.ThreadSafetyViolations)
	}
}
