package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hupe1980/scriptmesh/core"
	"github.com/hupe1980/scriptmesh/logging"
)

// DeliveryRecord captures the outcome of the most recent delivery
// attempt for a task's webhook.
type DeliveryRecord struct {
	Time       time.Time
	Event      string
	StatusCode int
	Err        error
}

// Options configures a Notifier.
type Options struct {
	// Client is the HTTP client used for deliveries. Defaults to a
	// client with a 10s timeout.
	Client *http.Client

	// Logger receives delivery outcomes. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Notifier stores per-task push notification configs and performs
// single-attempt outbound deliveries of task snapshots.
type Notifier struct {
	mu         sync.RWMutex
	configs    map[string]*core.PushNotificationConfig
	deliveries map[string]DeliveryRecord
	client     *http.Client
	logger     logging.Logger
}

// NewNotifier creates a push notification registry.
func NewNotifier(optFns ...func(o *Options)) *Notifier {
	opts := Options{
		Client: &http.Client{Timeout: 10 * time.Second},
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Notifier{
		configs:    make(map[string]*core.PushNotificationConfig),
		deliveries: make(map[string]DeliveryRecord),
		client:     opts.Client,
		logger:     opts.Logger,
	}
}

// Set registers (or replaces) the webhook config for a task id. The
// caller is responsible for checking that the task exists.
func (n *Notifier) Set(taskID string, config *core.PushNotificationConfig) error {
	if config == nil {
		return core.NewValidationError("config", "push notification config is required")
	}
	if config.URL == "" {
		return core.NewValidationError("url", "push notification URL is required")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	cp := *config
	n.configs[taskID] = &cp
	return nil
}

// Get returns the webhook config for a task id, or NotFoundError if
// none was ever registered.
func (n *Notifier) Get(taskID string) (*core.PushNotificationConfig, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	config, ok := n.configs[taskID]
	if !ok {
		return nil, core.NewPushConfigNotFoundError(taskID)
	}
	cp := *config
	return &cp, nil
}

// Notify attempts one outbound delivery of the task snapshot for the
// named event, if a config exists and subscribes to it. Failure is
// recorded and logged but never returned to lifecycle code paths and
// never retried.
func (n *Notifier) Notify(ctx context.Context, t *core.Task, event string) {
	n.mu.RLock()
	config, ok := n.configs[t.ID]
	n.mu.RUnlock()
	if !ok || !config.WantsEvent(event) {
		return
	}

	statusCode, err := n.deliver(ctx, config, t)
	n.mu.Lock()
	n.deliveries[t.ID] = DeliveryRecord{Time: time.Now().UTC(), Event: event, StatusCode: statusCode, Err: err}
	n.mu.Unlock()

	if err != nil {
		n.logger.Warn("push notification delivery failed", "task_id", t.ID, "url", config.URL, "event", event, "error", err)
		return
	}
	n.logger.Debug("push notification delivered", "task_id", t.ID, "url", config.URL, "event", event, "status", statusCode)
}

// LastDelivery returns the most recent delivery record for a task.
func (n *Notifier) LastDelivery(taskID string) (DeliveryRecord, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	rec, ok := n.deliveries[taskID]
	return rec, ok
}

func (n *Notifier) deliver(ctx context.Context, config *core.PushNotificationConfig, t *core.Task) (int, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return 0, fmt.Errorf("marshal task snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range config.Headers {
		req.Header.Set(k, v)
	}
	if config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+config.Token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("endpoint returned %s", resp.Status)
	}
	return resp.StatusCode, nil
}
