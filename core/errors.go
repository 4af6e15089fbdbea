package core

import "fmt"

// ValidationError reports malformed or missing create() input, including
// an unsatisfiable output-mode negotiation. It is surfaced synchronously
// and no task is created.
type ValidationError struct {
	Field  string
	Reason string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports an unknown task id or a missing push
// notification config.
type NotFoundError struct {
	Kind string // "task" or "push notification config"
	ID   string
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewTaskNotFoundError creates a NotFoundError for a task id.
func NewTaskNotFoundError(id string) *NotFoundError {
	return &NotFoundError{Kind: "task", ID: id}
}

// NewPushConfigNotFoundError creates a NotFoundError for a missing push
// notification config.
func NewPushConfigNotFoundError(taskID string) *NotFoundError {
	return &NotFoundError{Kind: "push notification config for task", ID: taskID}
}

// InvalidStateError reports an operation rejected because of the task's
// current state, e.g. cancelling an already-terminal task.
type InvalidStateError struct {
	TaskID string
	State  TaskState
	Op     string
}

// Error returns the error message.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s task %s in state %s", e.Op, e.TaskID, e.State)
}

// InvalidTransitionError is raised by the task store when a mutator
// attempts a move the state machine does not permit. Late executor
// writes against a cancelled task surface as this error and are
// discarded by the executor ("cancelled wins").
type InvalidTransitionError struct {
	TaskID string
	From   TaskState
	To     TaskState
}

// Error returns the error message.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("task %s: illegal transition %s -> %s", e.TaskID, e.From, e.To)
}

// EngineError wraps a failure of the generation engine. Retryable
// failures (provider throttling, transient 5xx, attempt timeouts) are
// retried by the executor within its bounded budget; terminal failures
// are not.
type EngineError struct {
	Err       error
	Retryable bool
}

// Error returns the error message.
func (e *EngineError) Error() string {
	return fmt.Sprintf("engine: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error { return e.Err }

// NewEngineError wraps err with the retryable classification.
func NewEngineError(err error, retryable bool) *EngineError {
	return &EngineError{Err: err, Retryable: retryable}
}

// StreamError reports a fault observed mid-stream (subscriber dropped,
// store inconsistency). It terminates the affected subscription with an
// error event and never mutates task state.
type StreamError struct {
	TaskID string
	Reason string
}

// Error returns the error message.
func (e *StreamError) Error() string {
	return fmt.Sprintf("stream for task %s: %s", e.TaskID, e.Reason)
}
