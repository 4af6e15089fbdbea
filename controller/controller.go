package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/scriptmesh/core"
	"github.com/hupe1980/scriptmesh/internal/util"
	"github.com/hupe1980/scriptmesh/logging"
)

// supportedOutputModes lists the renderings a generated script can be
// requested in, in preference order.
var supportedOutputModes = []string{"text", "markdown", "html", "structured-data"}

// Executor runs a task's generation in the background. runner.Runner
// satisfies it.
type Executor interface {
	Run(ctx context.Context, taskID string, req core.GenerateRequest)
}

// PushRegistry stores per-task webhook configs and delivers events to
// them. push.Notifier satisfies it.
type PushRegistry interface {
	Set(taskID string, config *core.PushNotificationConfig) error
	Get(taskID string) (*core.PushNotificationConfig, error)
	Notify(ctx context.Context, t *core.Task, event string)
}

// CreateRequest carries the parameters of a new script generation task.
type CreateRequest struct {
	Title               string   `json:"title"`
	Tags                []string `json:"tags"`
	Idea                string   `json:"idea"`
	Lyrics              string   `json:"lyrics,omitempty"`
	Duration            int      `json:"duration,omitempty"`
	SessionID           string   `json:"sessionId,omitempty"`
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
}

// Options configure optional controller collaborators.
type Options struct {
	Push   PushRegistry
	Logger logging.Logger
}

// Controller coordinates the synchronous side of the task lifecycle.
type Controller struct {
	store    core.TaskStore
	sessions core.SessionStore
	executor Executor
	opts     Options

	activeMu sync.Mutex
	active   map[string]context.CancelFunc // cancel functions by task ID
}

// New creates a Controller over the given store, session store and executor.
func New(store core.TaskStore, sessions core.SessionStore, executor Executor, optFns ...func(o *Options)) *Controller {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Controller{
		store:    store,
		sessions: sessions,
		executor: executor,
		opts:     opts,
		active:   make(map[string]context.CancelFunc),
	}
}

// Create validates the request, persists a new submitted task, registers
// it with its session and launches the background executor. It returns
// the stored task snapshot before any generation work has run; progress
// is observed through Get, Subscribe or push notifications. A validation
// failure leaves no trace: no task is stored and no goroutine started.
func (c *Controller) Create(ctx context.Context, req CreateRequest) (*core.Task, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	mode, err := negotiateOutputMode(req.AcceptedOutputModes)
	if err != nil {
		return nil, err
	}

	id := util.NewID()
	msg := core.NewTextMessage("assistant", "Starting script generation...")
	metadata := map[string]any{
		"title":      req.Title,
		"tags":       req.Tags,
		"idea":       req.Idea,
		"outputMode": mode,
	}
	if req.Lyrics != "" {
		metadata["lyrics"] = req.Lyrics
	}
	if req.Duration > 0 {
		metadata["duration"] = req.Duration
	}

	t := core.NewTask(id, req.SessionID, msg, metadata)
	if err := c.store.Save(ctx, t); err != nil {
		return nil, err
	}

	genReq := core.GenerateRequest{
		Title:      req.Title,
		Tags:       req.Tags,
		Idea:       req.Idea,
		Lyrics:     req.Lyrics,
		Duration:   req.Duration,
		OutputMode: mode,
	}

	if req.SessionID != "" {
		if _, serr := c.sessions.GetOrCreate(req.SessionID); serr != nil {
			c.opts.Logger.Warn("session lookup failed", "session_id", req.SessionID, "error", serr)
		} else if serr := c.sessions.AddTask(t); serr != nil {
			c.opts.Logger.Warn("session registration failed", "task_id", id, "session_id", req.SessionID, "error", serr)
		} else if sess, serr := c.sessions.Get(req.SessionID); serr == nil && sess != nil {
			// Snapshot taken at create time; later session activity does
			// not leak into an already-launched generation.
			genReq.Context = sess.Context.Clone()
		}
	}

	// The runner outlives the create request, so it gets its own
	// cancellable context detached from the caller's.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.activeMu.Lock()
	c.active[id] = cancel
	c.activeMu.Unlock()

	go func() {
		defer func() {
			c.activeMu.Lock()
			delete(c.active, id)
			c.activeMu.Unlock()
			cancel()
		}()
		c.executor.Run(runCtx, id, genReq)
	}()

	c.notify(ctx, t, string(core.TaskStateSubmitted))
	c.opts.Logger.Info("task created", "task_id", id, "session_id", req.SessionID, "output_mode", mode)
	return t, nil
}

// Get returns the task snapshot for id.
func (c *Controller) Get(ctx context.Context, id string) (*core.Task, error) {
	return c.store.Get(ctx, id)
}

// List returns task snapshots matching the filter.
func (c *Controller) List(ctx context.Context, filter core.TaskFilter) ([]*core.Task, error) {
	return c.store.List(ctx, filter)
}

// Cancel moves a non-terminal task to cancelled and stops its in-flight
// generation. A task already in a terminal state returns
// InvalidStateError; the store's state machine makes the accept-once
// guarantee hold under concurrent cancels.
func (c *Controller) Cancel(ctx context.Context, id string) (*core.Task, error) {
	msg := core.NewTextMessage("assistant", "Task cancelled by user request")
	t, err := c.store.Transition(ctx, id, core.TaskStateCancelled, msg)
	if err != nil {
		var ite *core.InvalidTransitionError
		if errors.As(err, &ite) {
			return nil, &core.InvalidStateError{TaskID: id, State: ite.From, Op: "cancel"}
		}
		return nil, err
	}

	c.activeMu.Lock()
	cancel, ok := c.active[id]
	c.activeMu.Unlock()
	if ok {
		cancel()
	}

	c.notify(ctx, t, string(core.TaskStateCancelled))
	c.opts.Logger.Info("task cancelled", "task_id", id)
	return t, nil
}

// SetPushNotification registers a webhook config for the task. The task
// must exist.
func (c *Controller) SetPushNotification(ctx context.Context, taskID string, config *core.PushNotificationConfig) error {
	if c.opts.Push == nil {
		return core.NewValidationError("pushNotification", "push notifications are not enabled")
	}
	if _, err := c.store.Get(ctx, taskID); err != nil {
		return err
	}
	return c.opts.Push.Set(taskID, config)
}

// GetPushNotification returns the webhook config registered for the task.
func (c *Controller) GetPushNotification(ctx context.Context, taskID string) (*core.PushNotificationConfig, error) {
	if c.opts.Push == nil {
		return nil, core.NewPushConfigNotFoundError(taskID)
	}
	if _, err := c.store.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return c.opts.Push.Get(taskID)
}

func (c *Controller) notify(ctx context.Context, t *core.Task, event string) {
	if c.opts.Push == nil {
		return
	}
	c.opts.Push.Notify(ctx, t, event)
}

func validate(req CreateRequest) error {
	if req.Title == "" {
		return core.NewValidationError("title", "must not be empty")
	}
	if len(req.Tags) == 0 {
		return core.NewValidationError("tags", "at least one genre tag is required")
	}
	if req.Idea == "" {
		return core.NewValidationError("idea", "must not be empty")
	}
	if req.Duration < 0 {
		return core.NewValidationError("duration", "must be positive")
	}
	return nil
}

// negotiateOutputMode picks the first accepted mode the service
// supports. An empty accepted list defaults to plain text.
func negotiateOutputMode(accepted []string) (string, error) {
	if len(accepted) == 0 {
		return "text", nil
	}
	for _, mode := range accepted {
		for _, supported := range supportedOutputModes {
			if mode == supported {
				return mode, nil
			}
		}
	}
	return "", core.NewValidationError("acceptedOutputModes", "no supported output mode in accepted list")
}
