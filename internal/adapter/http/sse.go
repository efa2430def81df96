package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"squish/internal/service"
)

type SSEHandler struct {
	sink *service.LogSink
}

func NewSSEHandler(sink *service.LogSink) *SSEHandler {
	return &SSEHandler{sink: sink}
}

// sseWrite writes an SSE event, handling multi-line data correctly.
func sseWrite(w http.ResponseWriter, eventName string, data string) {
	_, _ = fmt.Fprintf(w, "event: %s\n", eventName)
	for _, line := range strings.Split(data, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// sendKeepAlive writes an SSE comment to keep the connection active.
func sendKeepAlive(w http.ResponseWriter) {
	_, _ = fmt.Fprint(w, ": keep-alive\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func sendLine(w http.ResponseWriter, line service.LogLine) {
	payload, err := json.Marshal(line)
	if err != nil {
		return
	}
	sseWrite(w, "line", string(payload))
}

// Stream replays buffered encoder lines past the since cursor, then
// follows the live feed until the client disconnects.
func (h *SSEHandler) Stream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var since int64
		if raw := r.URL.Query().Get("since"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, "since must be a non-negative integer")
				return
			}
			since = parsed
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		// Replay before subscribing so a slow history never loses the
		// lines appended in between; duplicates across the boundary are
		// filtered by sequence number.
		ch := h.sink.Subscribe()
		defer h.sink.Unsubscribe(ch)

		lastSeq := since
		for _, line := range h.sink.Since(since) {
			sendLine(w, line)
			lastSeq = line.Seq
		}

		ctx := r.Context()
		keepAlive := time.NewTicker(15 * time.Second)
		defer keepAlive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				sendKeepAlive(w)
			case line, ok := <-ch:
				if !ok {
					return
				}
				if line.Seq <= lastSeq {
					continue
				}
				sendLine(w, line)
				lastSeq = line.Seq
			}
		}
	}
}
