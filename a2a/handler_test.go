package a2a

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scriptmesh/controller"
	"github.com/hupe1980/scriptmesh/core"
	"github.com/hupe1980/scriptmesh/engine"
	"github.com/hupe1980/scriptmesh/push"
	"github.com/hupe1980/scriptmesh/runner"
	"github.com/hupe1980/scriptmesh/session"
	"github.com/hupe1980/scriptmesh/stream"
	"github.com/hupe1980/scriptmesh/task"
)

// newTestServer wires a full stack around the given engine.
func newTestServer(t *testing.T, eng core.Engine) *httptest.Server {
	t.Helper()

	store := task.NewInMemoryStore()
	sessions := session.NewInMemoryStore()
	notifier := push.NewNotifier()

	r := runner.New(store, eng, func(o *runner.Options) {
		o.MaxAttempts = 1
		o.AttemptTimeout = time.Second
		o.Sessions = sessions
		o.Notifier = notifier
	})
	ctrl := controller.New(store, sessions, r, func(o *controller.Options) {
		o.Push = notifier
	})
	emitter := stream.NewEmitter(store)

	srv := httptest.NewServer(NewHandler(ctrl, emitter))
	t.Cleanup(srv.Close)
	return srv
}

func instantEngine() core.Engine {
	return engine.Func(func(ctx context.Context, req core.GenerateRequest) (*core.GenerateResult, error) {
		return &core.GenerateResult{Script: "FADE IN:\n\nEXT. CITY - NIGHT"}, nil
	})
}

func blockedEngine(release <-chan struct{}) core.Engine {
	return engine.Func(func(ctx context.Context, req core.GenerateRequest) (*core.GenerateResult, error) {
		select {
		case <-release:
			return &core.GenerateResult{Script: "FADE IN:"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

func sendTask(t *testing.T, srv *httptest.Server, body string) *core.Task {
	t.Helper()
	resp, err := http.Post(srv.URL+"/a2a/v1/tasks/send", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created core.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return &created
}

func getTask(t *testing.T, srv *httptest.Server, id string) (*core.Task, int) {
	t.Helper()
	resp, err := http.Get(srv.URL + "/a2a/v1/tasks/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode
	}
	var got core.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	return &got, resp.StatusCode
}

// waitForState polls until the task reaches state or the deadline fires.
func waitForState(t *testing.T, srv *httptest.Server, id string, state core.TaskState) *core.Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, status := getTask(t, srv, id)
		require.Equal(t, http.StatusOK, status)
		if got.Status.State == state {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s never reached %s", id, state)
	return nil
}

func TestHandler_SendAndGet(t *testing.T) {
	srv := newTestServer(t, instantEngine())

	created := sendTask(t, srv, `{"title":"Neon Rain","tags":["action"],"idea":"A courier discovers her cargo is alive"}`)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, core.TaskStateSubmitted, created.Status.State)

	done := waitForState(t, srv, created.ID, core.TaskStateCompleted)
	require.Len(t, done.Artifacts, 1)
	assert.Equal(t, "Neon Rain", done.Artifacts[0].Name)
}

func TestHandler_SendValidation(t *testing.T) {
	srv := newTestServer(t, instantEngine())

	resp, err := http.Post(srv.URL+"/a2a/v1/tasks/send", "application/json", strings.NewReader(`{"title":"No Tags"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusBadRequest, body.Error.Code)
	assert.Contains(t, body.Error.Message, "tags")
}

func TestHandler_GetUnknownTask(t *testing.T) {
	srv := newTestServer(t, instantEngine())

	_, status := getTask(t, srv, "missing")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandler_ListWithFilters(t *testing.T) {
	srv := newTestServer(t, instantEngine())

	a := sendTask(t, srv, `{"title":"A","tags":["drama"],"idea":"x","sessionId":"s1"}`)
	b := sendTask(t, srv, `{"title":"B","tags":["drama"],"idea":"y","sessionId":"s2"}`)
	waitForState(t, srv, a.ID, core.TaskStateCompleted)
	waitForState(t, srv, b.ID, core.TaskStateCompleted)

	resp, err := http.Get(srv.URL + "/a2a/v1/tasks?session_id=s1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tasks []core.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, a.ID, tasks[0].ID)

	resp, err = http.Get(srv.URL + "/a2a/v1/tasks?state=bogus")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Cancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	srv := newTestServer(t, blockedEngine(release))

	created := sendTask(t, srv, `{"title":"Slow Burn","tags":["drama"],"idea":"z"}`)
	waitForState(t, srv, created.ID, core.TaskStateWorking)

	resp, err := http.Post(srv.URL+"/a2a/v1/tasks/"+created.ID+"/cancel", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cancelled core.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cancelled))
	assert.Equal(t, core.TaskStateCancelled, cancelled.Status.State)

	// Cancelling again hits a terminal task.
	resp2, err := http.Post(srv.URL+"/a2a/v1/tasks/"+created.ID+"/cancel", "application/json", nil)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestHandler_PushNotificationConfig(t *testing.T) {
	srv := newTestServer(t, instantEngine())
	created := sendTask(t, srv, `{"title":"Hook","tags":["thriller"],"idea":"w"}`)

	// Get before set.
	resp, err := http.Get(srv.URL + "/a2a/v1/tasks/" + created.ID + "/pushNotification")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	config := `{"url":"https://example.com/hook","events":["completed"]}`
	resp, err = http.Post(srv.URL+"/a2a/v1/tasks/"+created.ID+"/pushNotification", "application/json", strings.NewReader(config))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/a2a/v1/tasks/" + created.ID + "/pushNotification")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got core.PushNotificationConfig
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "https://example.com/hook", got.URL)
}

func TestHandler_AgentCardAndHealth(t *testing.T) {
	srv := newTestServer(t, instantEngine())

	resp, err := http.Get(srv.URL + "/.well-known/agent.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var card AgentCard
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&card))
	assert.Equal(t, "Movie Script Generator Agent", card.Name)
	require.NotEmpty(t, card.Skills)
	assert.Equal(t, "generate-script", card.Skills[0].ID)

	resp2, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

// readSSEEvents consumes the stream until the connection closes,
// returning (event name, data) pairs and skipping comments.
func readSSEEvents(t *testing.T, body *bufio.Reader) [][2]string {
	t.Helper()
	var events [][2]string
	var name string
	var data bytes.Buffer
	for {
		line, err := body.ReadString('\n')
		if err != nil {
			return events
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data.WriteString(strings.TrimPrefix(line, "data: "))
		case line == "" && name != "":
			events = append(events, [2]string{name, data.String()})
			name = ""
			data.Reset()
		}
	}
}

func TestHandler_SendSubscribeStreamsToCompletion(t *testing.T) {
	srv := newTestServer(t, instantEngine())

	resp, err := http.Post(srv.URL+"/a2a/v1/tasks/sendSubscribe", "application/json",
		strings.NewReader(`{"title":"Streamed","tags":["comedy"],"idea":"v"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := readSSEEvents(t, bufio.NewReader(resp.Body))
	require.NotEmpty(t, events)

	// The last event is the final status update with artifacts inline.
	last := events[len(events)-1]
	assert.Equal(t, "status_update", last[0])

	var final core.StatusUpdateEvent
	require.NoError(t, json.Unmarshal([]byte(last[1]), &final))
	assert.True(t, final.Final)
	assert.Equal(t, core.TaskStateCompleted, final.Status.State)
	require.Len(t, final.Artifacts, 1)

	// Exactly one artifact event preceded it.
	artifacts := 0
	for _, ev := range events {
		if ev[0] == "artifact" {
			artifacts++
		}
	}
	assert.Equal(t, 1, artifacts)
}

func TestHandler_SubscribeUnknownTask(t *testing.T) {
	srv := newTestServer(t, instantEngine())

	resp, err := http.Get(srv.URL + "/a2a/v1/tasks/missing/subscribe")
	require.NoError(t, err)
	defer resp.Body.Close()

	// The stream opens before the task lookup, so the 404 arrives as an
	// error event, not a status code.
	require.Equal(t, http.StatusOK, resp.StatusCode)
	events := readSSEEvents(t, bufio.NewReader(resp.Body))
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0][0])

	var errEv core.ErrorEvent
	require.NoError(t, json.Unmarshal([]byte(events[0][1]), &errEv))
	assert.Equal(t, 404, errEv.Code)
}
