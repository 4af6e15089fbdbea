package core

import "time"

// Stream event names as they appear on the push channel.
const (
	EventStatusUpdate = "status_update"
	EventArtifact     = "artifact"
	EventError        = "error"
)

// StreamEvent is the closed set of events a subscription can observe.
// Concrete event types implement the unexported isStreamEvent marker.
type StreamEvent interface{ isStreamEvent() }

// StatusUpdateEvent reports a task status observation. Final is set on
// the exactly-one terminal status event of a subscription; terminal
// completed events carry the artifacts inline.
type StatusUpdateEvent struct {
	ID        string      `json:"id"`
	Status    TaskStatus  `json:"status"`
	Final     bool        `json:"final"`
	Artifacts []*Artifact `json:"artifacts,omitempty"`
}

// isStreamEvent implements the StreamEvent interface for StatusUpdateEvent.
func (StatusUpdateEvent) isStreamEvent() {}

// ArtifactUpdateEvent reports a newly available artifact.
type ArtifactUpdateEvent struct {
	ID       string    `json:"id"`
	Artifact *Artifact `json:"artifact"`
}

// isStreamEvent implements the StreamEvent interface for ArtifactUpdateEvent.
func (ArtifactUpdateEvent) isStreamEvent() {}

// ErrorEvent terminates a subscription after a streaming fault or a
// vanished task. It never reflects task state: an engine failure is a
// status update to failed, not an ErrorEvent.
type ErrorEvent struct {
	ID      string `json:"id"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// isStreamEvent implements the StreamEvent interface for ErrorEvent.
func (ErrorEvent) isStreamEvent() {}

// KeepAliveEvent is emitted when no state change was observed within the
// idle window. Transports render it as a comment, not a named event.
type KeepAliveEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// isStreamEvent implements the StreamEvent interface for KeepAliveEvent.
func (KeepAliveEvent) isStreamEvent() {}
