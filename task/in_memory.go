package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/scriptmesh/core"
)

// watchBuffer bounds the number of undelivered snapshots per watcher. A
// task produces a handful of mutations over its lifetime, so a watcher
// hitting this limit is not keeping up and is dropped, surfacing as a
// stream fault on its subscription.
const watchBuffer = 32

// watcher is a single registered observation channel for one task.
type watcher struct {
	ch   chan *core.Task
	once sync.Once
}

func (w *watcher) close() {
	w.once.Do(func() { close(w.ch) })
}

// InMemoryStore is a volatile TaskStore implementation storing tasks in
// a process local map. It is safe for concurrent access. Every snapshot
// crossing the store boundary is deep-copied, so callers can never
// mutate shared state.
//
// All mutations run as a single critical section: the state machine
// check, the write, and the watcher notification happen under one lock,
// which is what makes "cancelled wins" and the completed-with-artifacts
// atomicity observable guarantees rather than best effort.
type InMemoryStore struct {
	mu       sync.RWMutex
	tasks    map[string]*core.Task
	watchers map[string]map[int]*watcher
	nextID   int
}

var _ core.TaskStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory task store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tasks:    make(map[string]*core.Task),
		watchers: make(map[string]map[int]*watcher),
	}
}

// Save inserts a freshly created task. Task ids are never reused, so an
// existing id is rejected.
func (s *InMemoryStore) Save(ctx context.Context, t *core.Task) error {
	if t == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if t.ID == "" {
		return fmt.Errorf("task id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.ID]; exists {
		return fmt.Errorf("task %s already exists", t.ID)
	}
	s.tasks[t.ID] = t.Clone()
	return nil
}

// Get returns a snapshot of the task or NotFoundError.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, core.NewTaskNotFoundError(id)
	}
	return t.Clone(), nil
}

// List returns snapshots of tasks matching the filter.
func (s *InMemoryStore) List(ctx context.Context, filter core.TaskFilter) ([]*core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.SessionID != "" && t.SessionID != filter.SessionID {
			continue
		}
		if filter.State != "" && t.Status.State != filter.State {
			continue
		}
		out = append(out, t.Clone())
	}
	return out, nil
}

// Transition atomically moves the task to state, appending the
// superseded status to history. An illegal move (including any write
// against a terminal state, which is how a late executor result loses
// to an earlier cancel) returns InvalidTransitionError and leaves the
// record untouched.
func (s *InMemoryStore) Transition(ctx context.Context, id string, state core.TaskState, msg *core.Message) (*core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, core.NewTaskNotFoundError(id)
	}
	if !t.Status.State.CanTransitionTo(state) {
		return nil, &core.InvalidTransitionError{TaskID: id, From: t.Status.State, To: state}
	}

	s.commitLocked(t, state, nil, msg)
	snapshot := t.Clone()
	s.notifyLocked(id, snapshot)
	return snapshot, nil
}

// Complete attaches the artifacts and moves the task to completed in a
// single critical section, so no reader or watcher can observe the
// completed state without artifacts.
func (s *InMemoryStore) Complete(ctx context.Context, id string, artifacts []*core.Artifact, msg *core.Message) (*core.Task, error) {
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("complete task %s: at least one artifact is required", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, core.NewTaskNotFoundError(id)
	}
	if !t.Status.State.CanTransitionTo(core.TaskStateCompleted) {
		return nil, &core.InvalidTransitionError{TaskID: id, From: t.Status.State, To: core.TaskStateCompleted}
	}

	s.commitLocked(t, core.TaskStateCompleted, artifacts, msg)
	snapshot := t.Clone()
	s.notifyLocked(id, snapshot)
	return snapshot, nil
}

// Watch returns a channel of task snapshots, one per committed
// mutation, in write order. The stop function releases the watch.
func (s *InMemoryStore) Watch(ctx context.Context, id string) (<-chan *core.Task, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return nil, nil, core.NewTaskNotFoundError(id)
	}

	w := &watcher{ch: make(chan *core.Task, watchBuffer)}
	s.nextID++
	key := s.nextID
	if s.watchers[id] == nil {
		s.watchers[id] = make(map[int]*watcher)
	}
	s.watchers[id][key] = w

	stop := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ws, ok := s.watchers[id]; ok {
			if reg, ok := ws[key]; ok {
				delete(ws, key)
				reg.close()
			}
		}
	}
	return w.ch, stop, nil
}

// commitLocked applies the status change; caller must hold the write
// lock and have validated the transition.
func (s *InMemoryStore) commitLocked(t *core.Task, state core.TaskState, artifacts []*core.Artifact, msg *core.Message) {
	now := time.Now().UTC()
	t.History = append(t.History, t.Status)
	if artifacts != nil {
		t.Artifacts = make([]*core.Artifact, len(artifacts))
		for i, a := range artifacts {
			t.Artifacts[i] = a.Clone()
		}
	}
	t.Status = core.TaskStatus{State: state, Timestamp: now, Message: msg}
	t.UpdatedAt = now
}

// notifyLocked fans a committed snapshot out to the task's watchers.
// Delivery is non-blocking: a watcher whose buffer is full has fallen
// behind the write rate and is dropped by closing its channel.
func (s *InMemoryStore) notifyLocked(id string, snapshot *core.Task) {
	for key, w := range s.watchers[id] {
		select {
		case w.ch <- snapshot.Clone():
		default:
			delete(s.watchers[id], key)
			w.close()
		}
	}
}

// Size returns the number of stored tasks. Useful for tests.
func (s *InMemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
