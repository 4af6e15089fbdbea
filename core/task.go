package core

import (
	"encoding/json"
	"time"
)

// Message holds a role tag plus ordered heterogeneous parts.
type Message struct {
	Role     string         `json:"role"`
	Parts    []Part         `json:"parts"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewTextMessage builds a single-text-part message for the given role.
func NewTextMessage(role, text string) *Message {
	return &Message{Role: role, Parts: []Part{TextPart{Text: text}}}
}

// Text returns the concatenated plain text of the message parts.
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	return PartText(m.Parts)
}

// UnmarshalJSON decodes the part list through the type discriminant.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role     string          `json:"role"`
		Parts    json.RawMessage `json:"parts"`
		Metadata map[string]any  `json:"metadata,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Metadata = raw.Metadata
	if len(raw.Parts) > 0 {
		parts, err := DecodeParts(raw.Parts)
		if err != nil {
			return err
		}
		m.Parts = parts
	}
	return nil
}

// TaskStatus captures a single point on a task's lifecycle path: the
// state, when it was entered, and an optional human-readable message.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Timestamp time.Time `json:"timestamp"`
	Message   *Message  `json:"message,omitempty"`
}

// Artifact is a named bundle of output parts attached to a task upon
// completion. The Index/Append/LastChunk trio is only populated for
// artifacts streamed in pieces.
type Artifact struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Index       *int           `json:"index,omitempty"`
	Append      *bool          `json:"append,omitempty"`
	LastChunk   *bool          `json:"lastChunk,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UnmarshalJSON decodes the part list through the type discriminant.
func (a *Artifact) UnmarshalJSON(data []byte) error {
	type alias Artifact
	var raw struct {
		alias
		Parts json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Artifact(raw.alias)
	if len(raw.Parts) > 0 {
		parts, err := DecodeParts(raw.Parts)
		if err != nil {
			return err
		}
		a.Parts = parts
	}
	return nil
}

// Task is a unit of requested generation work tracked through the
// lifecycle state machine.
//
// Contract:
//   - ID is assigned at creation and never reused or mutated
//   - Status moves only along the TaskState machine; History records
//     every superseded status append-only
//   - Artifacts stay empty until the task is observable as completed
//   - After creation the task is mutated exclusively by its own
//     background executor, plus the single external cancel path
type Task struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId,omitempty"`
	Status    TaskStatus     `json:"status"`
	Artifacts []*Artifact    `json:"artifacts,omitempty"`
	History   []TaskStatus   `json:"history,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewTask builds a task in the submitted state with the given id and
// status message.
func NewTask(id, sessionID string, msg *Message, metadata map[string]any) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:        id,
		SessionID: sessionID,
		Status:    TaskStatus{State: TaskStateSubmitted, Timestamp: now, Message: msg},
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the task safe for independent mutation.
// Parts are value types and shared; everything mutable (slices, maps)
// is copied.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Artifacts != nil {
		clone.Artifacts = make([]*Artifact, len(t.Artifacts))
		for i, a := range t.Artifacts {
			clone.Artifacts[i] = a.Clone()
		}
	}
	if t.History != nil {
		clone.History = make([]TaskStatus, len(t.History))
		copy(clone.History, t.History)
	}
	if t.Metadata != nil {
		clone.Metadata = make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}

// Clone returns a deep copy of the artifact.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Parts != nil {
		clone.Parts = make([]Part, len(a.Parts))
		copy(clone.Parts, a.Parts)
	}
	if a.Metadata != nil {
		clone.Metadata = make(map[string]any, len(a.Metadata))
		for k, v := range a.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}

// PushNotificationConfig describes the per-task webhook a client
// registered for task update delivery.
type PushNotificationConfig struct {
	URL     string            `json:"url"`
	Events  []string          `json:"events,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Token   string            `json:"token,omitempty"`
}

// WantsEvent reports whether the config subscribes to the named event.
// An empty event list subscribes to everything.
func (c *PushNotificationConfig) WantsEvent(event string) bool {
	if len(c.Events) == 0 {
		return true
	}
	for _, e := range c.Events {
		if e == event {
			return true
		}
	}
	return false
}
