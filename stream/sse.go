package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hupe1980/scriptmesh/core"
)

// SSEHeaders sets the response headers for a Server-Sent Events stream.
// X-Accel-Buffering disables proxy buffering so events reach the client
// as they are written.
func SSEHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// WriteSSE renders one stream event in SSE wire format. Status, artifact
// and error events become named events with a JSON payload; keep-alives
// become comment lines, which clients ignore but proxies treat as
// traffic.
func WriteSSE(w io.Writer, ev core.StreamEvent) error {
	switch e := ev.(type) {
	case core.StatusUpdateEvent:
		return writeNamed(w, core.EventStatusUpdate, e)
	case core.ArtifactUpdateEvent:
		return writeNamed(w, core.EventArtifact, e)
	case core.ErrorEvent:
		return writeNamed(w, core.EventError, e)
	case core.KeepAliveEvent:
		_, err := fmt.Fprintf(w, ": keep-alive %s\n\n", e.Timestamp.Format(time.RFC3339))
		return err
	default:
		return fmt.Errorf("unknown stream event type %T", ev)
	}
}

func writeNamed(w io.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
