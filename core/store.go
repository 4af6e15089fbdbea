package core

import "context"

// TaskFilter narrows List results. Zero values mean "no filter".
type TaskFilter struct {
	SessionID string
	State     TaskState
}

// TaskStore is the authoritative registry of task records and the sole
// shared mutable structure of the system.
//
// Contract:
//   - Every mutator performs its transition as an atomic check-then-write
//     against the TaskState machine; an illegal move returns
//     InvalidTransitionError and leaves the record untouched
//   - Readers always observe a task's transitions in the order they were
//     written
//   - Completed state and attached artifacts are published as one atomic
//     fact: no reader or watcher ever observes completed without artifacts
type TaskStore interface {
	// Save inserts a freshly created task. The id must be unused.
	Save(ctx context.Context, task *Task) error

	// Get returns a snapshot of the task or NotFoundError.
	Get(ctx context.Context, id string) (*Task, error)

	// List returns snapshots of tasks matching the filter. No ordering
	// guarantee beyond stable iteration of the store.
	List(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// Transition atomically moves the task to state, appending the
	// superseded status to history. Returns the updated snapshot, or
	// NotFoundError / InvalidTransitionError.
	Transition(ctx context.Context, id string, state TaskState, msg *Message) (*Task, error)

	// Complete atomically attaches the artifacts and moves the task to
	// completed in one critical section. At least one artifact is
	// required.
	Complete(ctx context.Context, id string, artifacts []*Artifact, msg *Message) (*Task, error)

	// Watch returns a channel of task snapshots, one per committed
	// mutation, in write order. The returned stop function releases the
	// watch; the channel is closed when the watch ends or the watcher
	// falls too far behind.
	Watch(ctx context.Context, id string) (<-chan *Task, func(), error)
}
