package push

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scriptmesh/core"
)

func newTask(id string) *core.Task {
	return core.NewTask(id, "s1", core.NewTextMessage("assistant", "Starting script generation..."), nil)
}

func TestNotifier_SetAndGet(t *testing.T) {
	n := NewNotifier()

	config := &core.PushNotificationConfig{URL: "https://example.com/hook", Token: "secret"}
	require.NoError(t, n.Set("t1", config))

	got, err := n.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, config.URL, got.URL)

	// Returned configs are copies.
	got.URL = "https://evil.example.com"
	again, err := n.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hook", again.URL)
}

func TestNotifier_SetRejectsInvalidConfig(t *testing.T) {
	n := NewNotifier()

	assert.Error(t, n.Set("t1", nil))
	assert.Error(t, n.Set("t1", &core.PushNotificationConfig{}))
}

func TestNotifier_GetWithoutSet(t *testing.T) {
	n := NewNotifier()

	_, err := n.Get("t1")
	var nf *core.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestNotifier_NotifyDeliversSnapshot(t *testing.T) {
	var (
		gotBody    []byte
		gotHeaders http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier()
	require.NoError(t, n.Set("t1", &core.PushNotificationConfig{
		URL:     srv.URL,
		Token:   "secret",
		Headers: map[string]string{"X-Request-Source": "scriptmesh"},
	}))

	n.Notify(context.Background(), newTask("t1"), "submitted")

	assert.Equal(t, "Bearer secret", gotHeaders.Get("Authorization"))
	assert.Equal(t, "scriptmesh", gotHeaders.Get("X-Request-Source"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))

	var payload core.Task
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	assert.Equal(t, "t1", payload.ID)
	assert.Equal(t, core.TaskStateSubmitted, payload.Status.State)

	rec, ok := n.LastDelivery("t1")
	require.True(t, ok)
	assert.Equal(t, "submitted", rec.Event)
	assert.Equal(t, http.StatusOK, rec.StatusCode)
	assert.NoError(t, rec.Err)
}

func TestNotifier_NotifyRespectsEventFilter(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier()
	require.NoError(t, n.Set("t1", &core.PushNotificationConfig{
		URL:    srv.URL,
		Events: []string{"completed", "failed"},
	}))

	n.Notify(context.Background(), newTask("t1"), "working")
	assert.Equal(t, 0, calls, "unsubscribed event should not be delivered")

	n.Notify(context.Background(), newTask("t1"), "completed")
	assert.Equal(t, 1, calls)
}

func TestNotifier_NotifyWithoutConfigIsNoOp(t *testing.T) {
	n := NewNotifier()
	n.Notify(context.Background(), newTask("t1"), "completed")

	_, ok := n.LastDelivery("t1")
	assert.False(t, ok)
}

func TestNotifier_NotifyRecordsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier()
	require.NoError(t, n.Set("t1", &core.PushNotificationConfig{URL: srv.URL}))

	// Failure is recorded but never propagated.
	n.Notify(context.Background(), newTask("t1"), "completed")

	rec, ok := n.LastDelivery("t1")
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, rec.StatusCode)
	assert.Error(t, rec.Err)
}
