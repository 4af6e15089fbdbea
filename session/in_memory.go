package session

import (
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/scriptmesh/core"
	"github.com/hupe1980/scriptmesh/internal/util"
)

// themeKeywords is the fixed vocabulary scanned for during theme
// detection. Matching is case-insensitive substring search over a
// task's title, tags and idea.
var themeKeywords = []string{"adventure", "romance", "action", "drama", "comedy"}

const (
	// maxPreviousScripts bounds the summaries kept per session.
	maxPreviousScripts = 5
	// summaryLength bounds each stored script summary.
	summaryLength = 200
)

// Options configures the in-memory session store.
type Options struct {
	// IdleTimeout is the window after which an untouched session is
	// purged on next access.
	IdleTimeout time.Duration

	// Now overrides the clock. Tests inject a fake to drive expiry.
	Now func() time.Time
}

// InMemoryStore is a volatile SessionStore implementation. It is safe
// for concurrent access and purges idle sessions lazily on every
// access; purging drops only the session object and its derived
// context, never the task records the session referenced.
type InMemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*core.Session
	idleTimeout time.Duration
	now         func() time.Time
}

var _ core.SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{
		IdleTimeout: 30 * time.Minute,
		Now:         time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{
		sessions:    make(map[string]*core.Session),
		idleTimeout: opts.IdleTimeout,
		now:         opts.Now,
	}
}

// GetOrCreate returns the session for id (clone), creating it if needed.
func (s *InMemoryStore) GetOrCreate(id string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &core.Session{ID: id, LastActivity: s.now().UTC()}
		s.sessions[id] = sess
	}
	return sess.Clone(), nil
}

// Get returns the session (clone) or nil if it does not exist or has
// expired.
func (s *InMemoryStore) Get(id string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return sess.Clone(), nil
}

// AddTask registers the task with its session, refreshing the activity
// window and folding theme signals from the task parameters into the
// bounded context. Tasks without a session id are ignored.
func (s *InMemoryStore) AddTask(t *core.Task) error {
	if t == nil || t.SessionID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()

	sess, ok := s.sessions[t.SessionID]
	if !ok {
		sess = &core.Session{ID: t.SessionID}
		s.sessions[t.SessionID] = sess
	}
	sess.TaskIDs = append(sess.TaskIDs, t.ID)
	sess.LastActivity = s.now().UTC()

	for _, theme := range detectThemes(t.Metadata) {
		if !contains(sess.Context.Themes, theme) {
			sess.Context.Themes = append(sess.Context.Themes, theme)
		}
	}
	return nil
}

// RecordCompletion folds a truncated summary of a completed script into
// the session context, keeping at most maxPreviousScripts entries.
func (s *InMemoryStore) RecordCompletion(sessionID, title, summary string) error {
	if sessionID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeExpiredLocked()

	sess, ok := s.sessions[sessionID]
	if !ok {
		// Session expired while the task ran; nothing to fold into.
		return nil
	}
	sess.LastActivity = s.now().UTC()
	sess.Context.PreviousScripts = append(sess.Context.PreviousScripts, core.ScriptSummary{
		Timestamp: s.now().UTC(),
		Title:     title,
		Summary:   util.Truncate(summary, summaryLength),
	})
	if n := len(sess.Context.PreviousScripts); n > maxPreviousScripts {
		sess.Context.PreviousScripts = sess.Context.PreviousScripts[n-maxPreviousScripts:]
	}
	return nil
}

// purgeExpiredLocked drops sessions idle past the timeout; caller must
// hold the lock.
func (s *InMemoryStore) purgeExpiredLocked() {
	cutoff := s.now().UTC().Add(-s.idleTimeout)
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// detectThemes scans the task's title, tags and idea for the fixed
// theme vocabulary.
func detectThemes(metadata map[string]any) []string {
	var sb strings.Builder
	if v, ok := metadata["title"].(string); ok {
		sb.WriteString(v)
		sb.WriteString(" ")
	}
	if v, ok := metadata["idea"].(string); ok {
		sb.WriteString(v)
		sb.WriteString(" ")
	}
	if tags, ok := metadata["tags"].([]string); ok {
		sb.WriteString(strings.Join(tags, " "))
	}
	text := strings.ToLower(sb.String())

	var themes []string
	for _, kw := range themeKeywords {
		if strings.Contains(text, kw) {
			themes = append(themes, kw)
		}
	}
	return themes
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
