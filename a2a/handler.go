package a2a

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hupe1980/scriptmesh/controller"
	"github.com/hupe1980/scriptmesh/core"
	"github.com/hupe1980/scriptmesh/logging"
	"github.com/hupe1980/scriptmesh/stream"
)

// Options configure the HTTP handler.
type Options struct {
	// Card is served under /.well-known/agent.json.
	Card   *AgentCard
	Logger logging.Logger
}

// Handler serves the task lifecycle API over HTTP.
type Handler struct {
	controller *controller.Controller
	emitter    *stream.Emitter
	mux        *http.ServeMux
	opts       Options
}

// NewHandler creates the HTTP handler over the given controller and emitter.
func NewHandler(ctrl *controller.Controller, emitter *stream.Emitter, optFns ...func(o *Options)) *Handler {
	opts := Options{
		Card:   DefaultAgentCard(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &Handler{
		controller: ctrl,
		emitter:    emitter,
		mux:        http.NewServeMux(),
		opts:       opts,
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /.well-known/agent.json", h.handleAgentCard)
	h.mux.HandleFunc("GET /health", h.handleHealth)

	h.mux.HandleFunc("POST /a2a/v1/tasks/send", h.handleSend)
	h.mux.HandleFunc("POST /a2a/v1/tasks/sendSubscribe", h.handleSendSubscribe)
	h.mux.HandleFunc("GET /a2a/v1/tasks", h.handleList)
	h.mux.HandleFunc("GET /a2a/v1/tasks/{id}", h.handleGet)
	h.mux.HandleFunc("GET /a2a/v1/tasks/{id}/subscribe", h.handleSubscribe)
	h.mux.HandleFunc("POST /a2a/v1/tasks/{id}/cancel", h.handleCancel)
	h.mux.HandleFunc("POST /a2a/v1/tasks/{id}/pushNotification", h.handleSetPushNotification)
	h.mux.HandleFunc("GET /a2a/v1/tasks/{id}/pushNotification", h.handleGetPushNotification)
}

func (h *Handler) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.opts.Card)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var req controller.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, core.NewValidationError("body", "invalid JSON payload"))
		return
	}

	t, err := h.controller.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

// handleSendSubscribe creates a task and streams its updates on the same
// connection.
func (h *Handler) handleSendSubscribe(w http.ResponseWriter, r *http.Request) {
	var req controller.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, core.NewValidationError("body", "invalid JSON payload"))
		return
	}

	t, err := h.controller.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.streamTask(w, r, t.ID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.controller.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := core.TaskFilter{
		SessionID: r.URL.Query().Get("session_id"),
	}
	if state := r.URL.Query().Get("state"); state != "" {
		s := core.TaskState(state)
		if !s.Valid() {
			h.writeError(w, core.NewValidationError("state", "unknown task state"))
			return
		}
		filter.State = s
	}

	tasks, err := h.controller.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	h.streamTask(w, r, r.PathValue("id"))
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	t, err := h.controller.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) handleSetPushNotification(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var config core.PushNotificationConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		h.writeError(w, core.NewValidationError("body", "invalid JSON payload"))
		return
	}

	if err := h.controller.SetPushNotification(r.Context(), id, &config); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &config)
}

func (h *Handler) handleGetPushNotification(w http.ResponseWriter, r *http.Request) {
	config, err := h.controller.GetPushNotification(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, config)
}

// streamTask renders a task's event subscription as SSE until the
// subscription ends or the client disconnects.
func (h *Handler) streamTask(w http.ResponseWriter, r *http.Request, taskID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, errors.New("streaming not supported"))
		return
	}

	stream.SSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range h.emitter.Subscribe(r.Context(), taskID) {
		if err := stream.WriteSSE(w, ev); err != nil {
			h.opts.Logger.Debug("subscriber write failed", "task_id", taskID, "error", err)
			return
		}
		flusher.Flush()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.opts.Logger.Error("response encoding failed", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes, keeping the
// body shape uniform.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var (
		validationErr *core.ValidationError
		notFoundErr   *core.NotFoundError
		stateErr      *core.InvalidStateError
	)
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &stateErr):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.opts.Logger.Error("request failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": err.Error(),
		},
	})
}
