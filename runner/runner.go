package runner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/hupe1980/scriptmesh/artifact"
	"github.com/hupe1980/scriptmesh/core"
	"github.com/hupe1980/scriptmesh/logging"
)

// Notifier delivers best-effort push notifications about task state
// changes. push.Notifier satisfies it.
type Notifier interface {
	Notify(ctx context.Context, t *core.Task, event string)
}

// Options configure the retry budget and collaborators of a Runner.
type Options struct {
	// MaxAttempts bounds engine calls per task, first attempt included.
	MaxAttempts int
	// InitialBackoff is the delay before the second attempt; each further
	// delay is multiplied by BackoffMultiplier up to MaxBackoff, with
	// 10% jitter added.
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
	// AttemptTimeout caps each individual engine call.
	AttemptTimeout time.Duration

	// Sessions, when set, receives a completion summary for the task's
	// session on success.
	Sessions core.SessionStore
	// Notifier, when set, is told about working/completed/failed commits.
	Notifier Notifier
	Logger   logging.Logger
}

// Runner drives a single task's generation to a terminal state.
type Runner struct {
	store  core.TaskStore
	engine core.Engine
	opts   Options
}

// New creates a Runner over the given store and engine.
func New(store core.TaskStore, engine core.Engine, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		BackoffMultiplier: 2,
		MaxBackoff:        8 * time.Second,
		AttemptTimeout:    2 * time.Minute,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{store: store, engine: engine, opts: opts}
}

// Run takes the task from submitted through working to a terminal state.
// It never returns an error: outcomes are recorded on the task through
// the store, and a cancellation racing any commit simply wins, the
// runner's own result being discarded.
func (r *Runner) Run(ctx context.Context, taskID string, req core.GenerateRequest) {
	workingMsg := core.NewTextMessage("assistant", "Generating movie script...")
	t, err := r.store.Transition(ctx, taskID, core.TaskStateWorking, workingMsg)
	if err != nil {
		r.logDiscard(taskID, "start", err)
		return
	}
	r.notify(ctx, t, string(t.Status.State))

	result, err := r.generateWithRetry(ctx, taskID, req)
	if err != nil {
		r.fail(ctx, taskID, err)
		return
	}

	art, err := artifact.NewScriptArtifact(result, req)
	if err != nil {
		// Mapping failures are terminal; another attempt would map the
		// same result again.
		r.fail(ctx, taskID, err)
		return
	}

	doneMsg := core.NewTextMessage("assistant", "Script generation completed")
	t, err = r.store.Complete(ctx, taskID, []*core.Artifact{art}, doneMsg)
	if err != nil {
		r.logDiscard(taskID, "complete", err)
		return
	}

	if r.opts.Sessions != nil && t.SessionID != "" {
		if serr := r.opts.Sessions.RecordCompletion(t.SessionID, req.Title, result.Script); serr != nil {
			r.opts.Logger.Warn("recording session completion failed", "task_id", taskID, "session_id", t.SessionID, "error", serr)
		}
	}
	r.notify(ctx, t, string(t.Status.State))
	r.opts.Logger.Info("task completed", "task_id", taskID, "artifacts", len(t.Artifacts))
}

// generateWithRetry calls the engine under a per-attempt timeout,
// retrying retryable failures with exponential backoff and jitter.
func (r *Runner) generateWithRetry(ctx context.Context, taskID string, req core.GenerateRequest) (*core.GenerateResult, error) {
	var lastErr error
	delay := r.opts.InitialBackoff

	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		result, err := r.attempt(ctx, req)
		if err == nil {
			r.opts.Logger.Debug("engine call succeeded", "task_id", taskID, "attempt", attempt, "duration", time.Since(start))
			return result, nil
		}

		lastErr = err
		r.opts.Logger.Warn("engine call failed", "task_id", taskID, "attempt", attempt, "duration", time.Since(start), "error", err)

		if !retryable(err) {
			return nil, err
		}
		if attempt == r.opts.MaxAttempts {
			break
		}

		// 10% jitter keeps concurrent tasks from retrying in lockstep.
		jitter := time.Duration(rand.Float64() * float64(delay) * 0.1)
		select {
		case <-time.After(delay + jitter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		delay = time.Duration(float64(delay) * r.opts.BackoffMultiplier)
		if delay > r.opts.MaxBackoff {
			delay = r.opts.MaxBackoff
		}
	}

	return nil, fmt.Errorf("generation failed after %d attempts: %w", r.opts.MaxAttempts, lastErr)
}

func (r *Runner) attempt(ctx context.Context, req core.GenerateRequest) (*core.GenerateResult, error) {
	attemptCtx := ctx
	if r.opts.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.opts.AttemptTimeout)
		defer cancel()
	}
	return r.engine.Generate(attemptCtx, req)
}

// retryable classifies a failed attempt. Engine errors carry their own
// classification; an attempt deadline is transient; anything else,
// including cancellation of the task's own context, is final.
func retryable(err error) bool {
	var engErr *core.EngineError
	if errors.As(err, &engErr) {
		return engErr.Retryable
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// fail moves the task to failed with the error recorded as an assistant
// message. A task cancelled in the meantime keeps its cancelled state.
func (r *Runner) fail(ctx context.Context, taskID string, cause error) {
	msg := core.NewTextMessage("assistant", fmt.Sprintf("Script generation failed: %v", cause))
	t, err := r.store.Transition(ctx, taskID, core.TaskStateFailed, msg)
	if err != nil {
		r.logDiscard(taskID, "fail", err)
		return
	}
	r.notify(ctx, t, string(t.Status.State))
	r.opts.Logger.Info("task failed", "task_id", taskID, "error", cause)
}

// logDiscard records a commit the store rejected. An invalid transition
// here means the task reached a terminal state first, almost always by
// cancellation, and the runner's result is dropped on purpose.
func (r *Runner) logDiscard(taskID, op string, err error) {
	var ite *core.InvalidTransitionError
	if errors.As(err, &ite) {
		r.opts.Logger.Debug("discarding result, task already terminal", "task_id", taskID, "op", op, "state", ite.From)
		return
	}
	r.opts.Logger.Error("task commit failed", "task_id", taskID, "op", op, "error", err)
}

func (r *Runner) notify(ctx context.Context, t *core.Task, event string) {
	if r.opts.Notifier == nil {
		return
	}
	r.opts.Notifier.Notify(ctx, t, event)
}
