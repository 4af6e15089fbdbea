// Package scriptmesh provides a high-level façade over the task lifecycle
// services (task store, sessions, push notifications, background runner and
// streaming) enabling rapid construction of an asynchronous script generation
// service. Most applications interact with this package by:
//  1. Creating a ScriptMesh via New() with a generation engine (optionally
//     overriding the default in-memory services)
//  2. Creating tasks (CreateTask) and observing them via GetTask, Subscribe
//     or push notifications
//  3. Mounting Handler() to expose the HTTP API
//
// The façade delegates lifecycle coordination to controller.Controller while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a
// structured logger and tuned runner options.
package scriptmesh

import (
	"context"
	"net/http"

	"github.com/hupe1980/scriptmesh/a2a"
	"github.com/hupe1980/scriptmesh/controller"
	"github.com/hupe1980/scriptmesh/core"
	"github.com/hupe1980/scriptmesh/logging"
	"github.com/hupe1980/scriptmesh/push"
	"github.com/hupe1980/scriptmesh/runner"
	"github.com/hupe1980/scriptmesh/session"
	"github.com/hupe1980/scriptmesh/stream"
	"github.com/hupe1980/scriptmesh/task"
)

// Options configures the ScriptMesh instance.
type Options struct {
	// Stores (default to in-memory implementations if not provided)
	TaskStore    core.TaskStore
	SessionStore core.SessionStore

	// Push enables webhook notifications. Defaults to an in-memory
	// registry with a 10s delivery timeout.
	Push *push.Notifier

	// RunnerOptions tune the retry budget of the background executor.
	RunnerOptions []func(o *runner.Options)

	// KeepAliveInterval bounds subscriber idle time on event streams.
	KeepAliveInterval func(o *stream.Options)

	// AgentCard overrides the discovery document served over HTTP.
	AgentCard *a2a.AgentCard

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// ScriptMesh is the high-level façade aggregating the lifecycle services.
type ScriptMesh struct {
	opts       Options
	controller *controller.Controller
	emitter    *stream.Emitter
}

// New creates a new ScriptMesh around the given generation engine. Any
// unset service is initialized with an in-memory implementation.
func New(engine core.Engine, optFns ...func(o *Options)) *ScriptMesh {
	opts := Options{
		TaskStore:    task.NewInMemoryStore(),
		SessionStore: session.NewInMemoryStore(),
		Push:         push.NewNotifier(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	runnerOpts := append([]func(o *runner.Options){func(o *runner.Options) {
		o.Sessions = opts.SessionStore
		o.Notifier = opts.Push
		o.Logger = opts.Logger
	}}, opts.RunnerOptions...)
	r := runner.New(opts.TaskStore, engine, runnerOpts...)

	ctrl := controller.New(opts.TaskStore, opts.SessionStore, r, func(o *controller.Options) {
		o.Push = opts.Push
		o.Logger = opts.Logger
	})

	emitterOpts := []func(o *stream.Options){func(o *stream.Options) {
		o.Logger = opts.Logger
	}}
	if opts.KeepAliveInterval != nil {
		emitterOpts = append(emitterOpts, opts.KeepAliveInterval)
	}
	emitter := stream.NewEmitter(opts.TaskStore, emitterOpts...)

	return &ScriptMesh{opts: opts, controller: ctrl, emitter: emitter}
}

// CreateTask validates the request and launches background generation,
// returning the stored task snapshot immediately.
func (m *ScriptMesh) CreateTask(ctx context.Context, req controller.CreateRequest) (*core.Task, error) {
	return m.controller.Create(ctx, req)
}

// GetTask returns the current snapshot of a task.
func (m *ScriptMesh) GetTask(ctx context.Context, id string) (*core.Task, error) {
	return m.controller.Get(ctx, id)
}

// ListTasks returns task snapshots matching the filter.
func (m *ScriptMesh) ListTasks(ctx context.Context, filter core.TaskFilter) ([]*core.Task, error) {
	return m.controller.List(ctx, filter)
}

// CancelTask cancels a non-terminal task and stops its in-flight generation.
func (m *ScriptMesh) CancelTask(ctx context.Context, id string) (*core.Task, error) {
	return m.controller.Cancel(ctx, id)
}

// Subscribe opens an ordered event subscription for a task.
func (m *ScriptMesh) Subscribe(ctx context.Context, taskID string) <-chan core.StreamEvent {
	return m.emitter.Subscribe(ctx, taskID)
}

// SetPushNotification registers a webhook config for a task.
func (m *ScriptMesh) SetPushNotification(ctx context.Context, taskID string, config *core.PushNotificationConfig) error {
	return m.controller.SetPushNotification(ctx, taskID, config)
}

// GetPushNotification returns the webhook config registered for a task.
func (m *ScriptMesh) GetPushNotification(ctx context.Context, taskID string) (*core.PushNotificationConfig, error) {
	return m.controller.GetPushNotification(ctx, taskID)
}

// Handler returns the HTTP API surface, ready to mount on a server.
func (m *ScriptMesh) Handler() http.Handler {
	return a2a.NewHandler(m.controller, m.emitter, func(o *a2a.Options) {
		if m.opts.AgentCard != nil {
			o.Card = m.opts.AgentCard
		}
		o.Logger = m.opts.Logger
	})
}
