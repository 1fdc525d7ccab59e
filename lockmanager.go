package concbench

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ResourceLock records the current holder of a named shared resource.
// An entry exists only while the lock is held.
type ResourceLock struct {
	Owner      string    `json:"owner"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

// ResourceLockManager provides advisory mutual exclusion over named shared
// resources. Acquisition re-checks availability on a short poll interval
// rather than busy-spinning; a wait exceeding the caller's timeout is
// reported as a detected deadlock.
//
// All methods are safe for concurrent use; a single mutex serializes every
// acquire/release so concurrent acquires of one resource name never both
// succeed.
type ResourceLockManager struct {
	mu           sync.Mutex
	locks        map[string]ResourceLock
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewResourceLockManager creates an empty lock manager.
func NewResourceLockManager(pollInterval time.Duration, logger *slog.Logger) *ResourceLockManager {
	if pollInterval <= 0 {
		pollInterval = 20 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResourceLockManager{
		locks:        make(map[string]ResourceLock),
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Acquire blocks until resource is free or timeout elapses. On timeout it
// fails with a DeadlockDetected error carrying the resource, owner, and
// elapsed wait. Context cancellation (the level-wide deadline) returns the
// context error instead.
func (m *ResourceLockManager) Acquire(ctx context.Context, resource, owner string, timeout time.Duration) error {
	start := time.Now()
	for {
		if m.tryAcquire(resource, owner) {
			return nil
		}

		elapsed := time.Since(start)
		if elapsed >= timeout {
			m.logger.Warn("deadlock detected",
				"resource", resource,
				"owner", owner,
				"elapsed", elapsed)
			return newDeadlockDetected(resource, owner, elapsed)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.pollInterval):
		}
	}
}

// tryAcquire takes the lock if the resource is free.
func (m *ResourceLockManager) tryAcquire(resource, owner string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.locks[resource]; held {
		return false
	}
	m.locks[resource] = ResourceLock{Owner: owner, AcquiredAt: time.Now()}
	return true
}

// Release frees the resource only if owner is the current holder. Release by
// a non-owner is a silent no-op: after a timeout race, one task's completion
// must never free another holder's lock.
func (m *ResourceLockManager) Release(resource, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lock, held := m.locks[resource]; held && lock.Owner == owner {
		delete(m.locks, resource)
	}
}

// AcquireAll acquires every resource in listed order and returns a release
// closure for all of them. On failure, resources already taken are released
// before returning. The closure is safe to run regardless of how the task's
// work ends.
func (m *ResourceLockManager) AcquireAll(ctx context.Context, resources []string, owner string, timeout time.Duration) (func(), error) {
	acquired := make([]string, 0, len(resources))
	release := func() {
		for _, r := range acquired {
			m.Release(r, owner)
		}
	}

	for _, r := range resources {
		if err := m.Acquire(ctx, r, owner, timeout); err != nil {
			release()
			return nil, err
		}
		acquired = append(acquired, r)
	}
	return release, nil
}

// Holder reports the current lock on a resource, if any.
func (m *ResourceLockManager) Holder(resource string) (ResourceLock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, held := m.locks[resource]
	return lock, held
}

// HeldCount returns the number of currently held locks.
func (m *ResourceLockManager) HeldCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// ReleaseAll unconditionally clears every lock. Used at level completion and
// shutdown, after in-flight tasks have drained.
func (m *ResourceLockManager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for r := range m.locks {
		delete(m.locks, r)
	}
}
