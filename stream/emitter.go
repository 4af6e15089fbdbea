package stream

import (
	"context"
	"time"

	"github.com/hupe1980/scriptmesh/core"
	"github.com/hupe1980/scriptmesh/logging"
)

// Options configure the Emitter.
type Options struct {
	// KeepAliveInterval bounds subscriber idle time; a keep-alive event
	// is emitted when no state change arrived within it.
	KeepAliveInterval time.Duration
	Logger            logging.Logger
}

// Emitter produces per-task event subscriptions from the store's watch
// channels.
type Emitter struct {
	store core.TaskStore
	opts  Options
}

// NewEmitter creates an Emitter over the given store.
func NewEmitter(store core.TaskStore, optFns ...func(o *Options)) *Emitter {
	opts := Options{
		KeepAliveInterval: 15 * time.Second,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Emitter{store: store, opts: opts}
}

// Subscribe opens an event subscription for the task. The returned
// channel first carries the task's current status (an already-terminal
// task gets its full terminal tail immediately), then every subsequent
// state change in store write order, then exactly one terminal event,
// after which the channel is closed. An unknown task id yields a single
// error event. Cancelling ctx ends the subscription without a terminal
// event.
func (e *Emitter) Subscribe(ctx context.Context, taskID string) <-chan core.StreamEvent {
	out := make(chan core.StreamEvent, 8)
	go e.run(ctx, taskID, out)
	return out
}

func (e *Emitter) run(ctx context.Context, taskID string, out chan<- core.StreamEvent) {
	defer close(out)

	// Watch is registered before the initial read so no transition
	// between the two is lost; duplicates are filtered by state below.
	watch, stop, err := e.store.Watch(ctx, taskID)
	if err != nil {
		e.opts.Logger.Debug("subscription rejected", "task_id", taskID, "error", err)
		e.send(ctx, out, core.ErrorEvent{ID: taskID, Code: 404, Message: err.Error()})
		return
	}
	defer stop()

	t, err := e.store.Get(ctx, taskID)
	if err != nil {
		e.send(ctx, out, core.ErrorEvent{ID: taskID, Code: 404, Message: err.Error()})
		return
	}

	lastState := t.Status.State
	if e.emitSnapshot(ctx, out, t) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case snapshot, ok := <-watch:
			if !ok {
				// The store closes a watcher that fell behind the write
				// rate; the subscription cannot claim ordered delivery
				// anymore.
				e.opts.Logger.Warn("subscription dropped", "task_id", taskID)
				e.send(ctx, out, core.ErrorEvent{ID: taskID, Code: 500, Message: (&core.StreamError{TaskID: taskID, Reason: "subscriber fell behind"}).Error()})
				return
			}
			if snapshot.Status.State == lastState {
				continue
			}
			lastState = snapshot.Status.State
			if e.emitSnapshot(ctx, out, snapshot) {
				return
			}

		case <-time.After(e.opts.KeepAliveInterval):
			if !e.send(ctx, out, core.KeepAliveEvent{Timestamp: time.Now().UTC()}) {
				return
			}
		}
	}
}

// emitSnapshot translates a task snapshot into events and reports
// whether the subscription is finished. A completed task emits one
// artifact event per artifact followed by the final status update
// carrying the artifacts inline.
func (e *Emitter) emitSnapshot(ctx context.Context, out chan<- core.StreamEvent, t *core.Task) bool {
	if t.Status.State == core.TaskStateCompleted {
		if len(t.Artifacts) == 0 {
			// The store publishes completion and artifacts atomically,
			// so this cannot happen through it; withhold rather than
			// emit a completed status without its result.
			return false
		}
		for _, a := range t.Artifacts {
			if !e.send(ctx, out, core.ArtifactUpdateEvent{ID: t.ID, Artifact: a}) {
				return true
			}
		}
	}

	ev := core.StatusUpdateEvent{
		ID:     t.ID,
		Status: t.Status,
		Final:  t.Status.State.Terminal(),
	}
	if ev.Final && t.Status.State == core.TaskStateCompleted {
		ev.Artifacts = t.Artifacts
	}
	if !e.send(ctx, out, ev) {
		return true
	}
	return ev.Final
}

func (e *Emitter) send(ctx context.Context, out chan<- core.StreamEvent, ev core.StreamEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
