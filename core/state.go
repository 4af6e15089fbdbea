package core

// TaskState enumerates the lifecycle states of a task.
//
// The machine is strictly monotonic:
//
//	submitted -> working -> {completed, failed}
//	{submitted, working} -> cancelled
//
// Completed, Failed and Cancelled are terminal. No transition re-enters
// Submitted after creation and no transition leaves a terminal state.
type TaskState string

const (
	// TaskStateSubmitted is the state assigned at creation, before the
	// background executor picks the task up.
	TaskStateSubmitted TaskState = "submitted"
	// TaskStateWorking indicates the executor is driving the engine call.
	TaskStateWorking TaskState = "working"
	// TaskStateCompleted is the terminal success state. A task is only
	// observable as completed together with its artifacts.
	TaskStateCompleted TaskState = "completed"
	// TaskStateFailed is the terminal state after the engine call failed
	// past the bounded retry budget.
	TaskStateFailed TaskState = "failed"
	// TaskStateCancelled is the terminal state set by an external cancel.
	// A cancel always wins a race against a late completed/failed write.
	TaskStateCancelled TaskState = "cancelled"
	// TaskStateInputRequired is reserved by the protocol and unused by
	// this module's lifecycle.
	TaskStateInputRequired TaskState = "input-required"
)

// String returns the wire spelling of the state.
func (s TaskState) String() string { return string(s) }

// Valid reports whether s is a known state.
func (s TaskState) Valid() bool {
	switch s {
	case TaskStateSubmitted, TaskStateWorking, TaskStateCompleted,
		TaskStateFailed, TaskStateCancelled, TaskStateInputRequired:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the machine permits moving from s to
// next. Self-transitions are rejected along with everything else the
// machine does not name.
func (s TaskState) CanTransitionTo(next TaskState) bool {
	switch s {
	case TaskStateSubmitted:
		return next == TaskStateWorking || next == TaskStateCancelled
	case TaskStateWorking:
		return next == TaskStateCompleted || next == TaskStateFailed || next == TaskStateCancelled
	default:
		return false
	}
}
