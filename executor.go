package concbench

import (
	"context"
	"log/slog"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Failure injection rates emulating real contention behavior. Internal
// constants; tests zero the per-harness copies for deterministic runs.
const (
	contentionInjectionRate = 0.04
	violationInjectionRate  = 0.015
)

// A level may run at most this multiple of the task timeout before the hard
// deadline cuts off stragglers.
const levelDeadlineFactor = 2

// Work scale per execution mode.
const (
	realBaseWorkUnit      = 20 * time.Millisecond
	simulatedBaseWorkUnit = 200 * time.Microsecond
	realLockPoll          = 20 * time.Millisecond
	simulatedLockPoll     = 2 * time.Millisecond
)

// Harness executes benchmark levels. It is the single synchronized owner of
// all shared mutable benchmark state: the active-operation registry, the
// peak-concurrency counter, and the resource lock manager. No process-wide
// globals, so independent harnesses never bleed state into each other.
type Harness struct {
	cfg    BenchmarkConfig
	locks  *ResourceLockManager
	logger *slog.Logger

	// runMu is held for the full duration of each level so Shutdown can wait
	// for in-flight work to drain before clearing shared state.
	runMu sync.Mutex

	mu              sync.Mutex
	active          map[string]time.Time // task id -> start, in-flight only
	peak            int                  // max simultaneous in-flight tasks this level
	closed          bool
	runCancel       context.CancelFunc
	onLevelComplete func(ConcurrencyLevelMetrics)

	baseWorkUnit   time.Duration
	contentionRate float64
	violationRate  float64
}

// NewHarness validates cfg and builds a harness. Invalid configuration is a
// construction-time failure; no task ever executes against a bad config.
func NewHarness(cfg BenchmarkConfig) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	baseWork := realBaseWorkUnit
	lockPoll := realLockPoll
	if cfg.Mode == ExecutionModeSimulated {
		baseWork = simulatedBaseWorkUnit
		lockPoll = simulatedLockPoll
	}

	return &Harness{
		cfg:             cfg,
		locks:           NewResourceLockManager(lockPoll, cfg.Logger),
		logger:          cfg.Logger,
		active:          make(map[string]time.Time),
		onLevelComplete: cfg.OnLevelComplete,
		baseWorkUnit:    baseWork,
		contentionRate:  contentionInjectionRate,
		violationRate:   violationInjectionRate,
	}, nil
}

// Config returns the harness configuration after defaulting.
func (h *Harness) Config() BenchmarkConfig {
	return h.cfg
}

// LockManager exposes the resource lock manager for status queries.
func (h *Harness) LockManager() *ResourceLockManager {
	return h.locks
}

// ActiveOperations returns the number of tasks currently in flight.
func (h *Harness) ActiveOperations() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.active)
}

// RunLevel executes the task pool with at most workerCount simultaneous
// in-flight tasks. Additional tasks queue until a slot frees. Task-level
// failures are folded into the returned metrics, never propagated; only
// substrate failures return an error. On completion all locks and
// active-operation tracking are cleared, even when stragglers were cut off
// by the level deadline.
func (h *Harness) RunLevel(ctx context.Context, tasks []WorkerTask, workerCount int) (ConcurrencyLevelMetrics, error) {
	if workerCount <= 0 {
		return ConcurrencyLevelMetrics{}, newInvalidConfiguration("workerCount must be > 0, got %d", workerCount)
	}

	h.runMu.Lock()
	defer h.runMu.Unlock()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ConcurrencyLevelMetrics{}, newWorkerCreationFailure("harness has been shut down")
	}
	h.active = make(map[string]time.Time)
	h.peak = 0
	h.mu.Unlock()
	h.locks.ReleaseAll()

	if len(tasks) == 0 {
		return ConcurrencyLevelMetrics{WorkerCount: workerCount}, nil
	}

	var startMem runtime.MemStats
	runtime.ReadMemStats(&startMem)

	levelCtx, cancel := context.WithTimeout(ctx, levelDeadlineFactor*h.cfg.TaskTimeout)
	defer cancel()
	h.setRunCancel(cancel)
	defer h.setRunCancel(nil)

	var (
		sem      = semaphore.NewWeighted(int64(workerCount))
		wg       sync.WaitGroup
		counters levelCounters
	)

	start := time.Now()
	for _, task := range tasks {
		// A failed slot acquisition means the level deadline (or an outer
		// cancellation) cut this task off while still queued.
		if err := sem.Acquire(levelCtx, 1); err != nil {
			counters.recordSkipped()
			continue
		}

		wg.Add(1)
		go func(task WorkerTask) {
			defer wg.Done()
			defer sem.Release(1)
			counters.record(h.executeTask(levelCtx, task))
		}(task)
	}
	wg.Wait()
	elapsed := time.Since(start)

	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)
	peakMemory := endMem.Alloc
	if startMem.Alloc > peakMemory {
		peakMemory = startMem.Alloc
	}

	h.mu.Lock()
	peak := h.peak
	h.active = make(map[string]time.Time)
	h.mu.Unlock()
	h.locks.ReleaseAll()

	return counters.finalize(workerCount, len(tasks), peak, elapsed, peakMemory), nil
}

// executeTask runs one task end to end: registry tracking, scoped resource
// acquisition, simulated work. The release closure runs no matter how the
// work ends.
func (h *Harness) executeTask(ctx context.Context, task WorkerTask) error {
	h.beginTask(task.ID)
	defer h.endTask(task.ID)

	release, err := h.locks.AcquireAll(ctx, task.Requirements.SharedResources, task.ID, task.Timeout)
	if err != nil {
		return err
	}
	defer release()

	return h.simulateWork(ctx, task)
}

// simulateWork sleeps for the task's simulated duration, then applies
// stochastic failure injection. Duration scales with workload type and
// carries +-50% jitter.
func (h *Harness) simulateWork(ctx context.Context, task WorkerTask) error {
	jitter := 0.5 + rand.Float64()
	duration := time.Duration(float64(h.baseWorkUnit) * costFactor(task.Type) * jitter)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(duration):
	}

	if rand.Float64() < h.contentionRate {
		return newResourceContention(h.contendedResource(task), task.ID)
	}
	if rand.Float64() < h.violationRate {
		return newThreadSafetyViolation(task.ID)
	}
	return nil
}

// contendedResource names the resource blamed for an injected contention.
func (h *Harness) contendedResource(task WorkerTask) string {
	if len(task.Requirements.SharedResources) > 0 {
		return task.Requirements.SharedResources[0]
	}
	return sharedResourceNames[rand.Intn(len(sharedResourceNames))]
}

// beginTask registers a task as in flight and updates the level's peak
// concurrency.
func (h *Harness) beginTask(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.active[id] = time.Now()
	if n := len(h.active); n > h.peak {
		h.peak = n
	}
}

// endTask removes a task from the active registry.
func (h *Harness) endTask(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.active, id)
}

func (h *Harness) setRunCancel(cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runCancel = cancel
}

// Shutdown terminates any live workers, waits for them to drain, and clears
// the active-operation registry, all resource locks, and the level callback.
// Callable at any time, idempotent. After it returns the registry and lock
// map are both empty and any in-flight Run fails with WorkerCreationFailure
// on its next level.
func (h *Harness) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	cancel := h.runCancel
	h.onLevelComplete = nil
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	// Wait for the in-flight level to finish winding down before clearing
	// shared state, so no straggler re-registers after the wipe.
	h.runMu.Lock()
	defer h.runMu.Unlock()

	h.mu.Lock()
	h.active = make(map[string]time.Time)
	h.mu.Unlock()
	h.locks.ReleaseAll()
}
