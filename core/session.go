package core

import "time"

// ScriptSummary is a truncated record of a previously completed script
// kept as session context.
type ScriptSummary struct {
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
}

// SessionContext is the bounded derived context a session accumulates:
// detected themes plus truncated summaries of prior completed scripts.
type SessionContext struct {
	Themes          []string        `json:"themes,omitempty"`
	PreviousScripts []ScriptSummary `json:"previousScripts,omitempty"`
}

// Clone returns a deep copy of the context.
func (c *SessionContext) Clone() *SessionContext {
	if c == nil {
		return nil
	}
	clone := SessionContext{}
	if c.Themes != nil {
		clone.Themes = make([]string, len(c.Themes))
		copy(clone.Themes, c.Themes)
	}
	if c.PreviousScripts != nil {
		clone.PreviousScripts = make([]ScriptSummary, len(c.PreviousScripts))
		copy(clone.PreviousScripts, c.PreviousScripts)
	}
	return &clone
}

// Session groups related tasks and carries their accumulated, bounded
// context. Sessions expire after an idle window; expiry drops the
// session object and its context, never the underlying task records.
type Session struct {
	ID           string         `json:"id"`
	TaskIDs      []string       `json:"taskIds"`
	LastActivity time.Time      `json:"lastActivity"`
	Context      SessionContext `json:"context"`
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := Session{ID: s.ID, LastActivity: s.LastActivity, Context: *s.Context.Clone()}
	if s.TaskIDs != nil {
		clone.TaskIDs = make([]string, len(s.TaskIDs))
		copy(clone.TaskIDs, s.TaskIDs)
	}
	return &clone
}

// SessionStore groups tasks by session id and accumulates derived
// context. Implementations purge idle sessions lazily on access.
type SessionStore interface {
	// GetOrCreate returns the session for id, creating it if needed.
	GetOrCreate(id string) (*Session, error)

	// Get returns the session or nil if it does not exist (or expired).
	Get(id string) (*Session, error)

	// AddTask registers the task with its session, refreshing the
	// activity window and folding derived signals into the context.
	AddTask(task *Task) error

	// RecordCompletion folds a truncated summary of a completed script
	// into the session context.
	RecordCompletion(sessionID, title, summary string) error
}
