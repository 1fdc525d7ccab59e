package concbench

import (
	"errors"
	"fmt"
	"time"
)

// FailureKind classifies benchmark failures. Task-level kinds are folded into
// level metrics; fatal kinds abort the run.
type FailureKind string

const (
	// FailureInvalidConfiguration is fatal and raised before any work starts.
	FailureInvalidConfiguration FailureKind = "INVALID_CONFIGURATION"

	// FailureDeadlockDetected marks a task that could not acquire a shared
	// resource within its timeout.
	FailureDeadlockDetected FailureKind = "DEADLOCK_DETECTED"

	// FailureResourceContention marks a transient failure to proceed on a
	// shared resource.
	FailureResourceContention FailureKind = "RESOURCE_CONTENTION"

	// FailureThreadSafetyViolation marks a simulated unsynchronized-access
	// fault.
	FailureThreadSafetyViolation FailureKind = "THREAD_SAFETY_VIOLATION"

	// FailureWorkerCreation is fatal: the execution substrate itself is
	// broken, not the workload. No partial results are returned.
	FailureWorkerCreation FailureKind = "WORKER_CREATION_FAILURE"
)

// BenchError is the structured error type used throughout the harness.
type BenchError struct {
	Kind     FailureKind
	Message  string
	Resource string        // shared resource name, for lock failures
	Owner    string        // task or worker id, for lock failures
	Elapsed  time.Duration // wait time before a deadlock was declared
	Cause    error
}

// Error returns a formatted error string.
func (e *BenchError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Resource != "" {
		msg += fmt.Sprintf(" (resource=%s owner=%s elapsed=%s)", e.Resource, e.Owner, e.Elapsed)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *BenchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error's kind.
func (e *BenchError) Is(target error) bool {
	var t *BenchError
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf extracts the failure kind from an error chain.
// Returns empty string for nil and for errors outside the taxonomy
// (context cancellation, level deadline cut-off).
func KindOf(err error) FailureKind {
	var be *BenchError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

func newInvalidConfiguration(format string, args ...any) *BenchError {
	return &BenchError{
		Kind:    FailureInvalidConfiguration,
		Message: fmt.Sprintf(format, args...),
	}
}

func newDeadlockDetected(resource, owner string, elapsed time.Duration) *BenchError {
	return &BenchError{
		Kind:     FailureDeadlockDetected,
		Message:  "resource lock not acquired within timeout",
		Resource: resource,
		Owner:    owner,
		Elapsed:  elapsed,
	}
}

func newResourceContention(resource, owner string) *BenchError {
	return &BenchError{
		Kind:     FailureResourceContention,
		Message:  "transient contention on shared resource",
		Resource: resource,
		Owner:    owner,
	}
}

func newThreadSafetyViolation(owner string) *BenchError {
	return &BenchError{
		Kind:    FailureThreadSafetyViolation,
		Message: "unsynchronized access detected",
		Owner:   owner,
	}
}

func newWorkerCreationFailure(format string, args ...any) *BenchError {
	return &BenchError{
		Kind:    FailureWorkerCreation,
		Message: fmt.Sprintf(format, args...),
	}
}
