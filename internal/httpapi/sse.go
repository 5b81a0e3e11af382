package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
)

// sseKeepalive is the comment-frame interval that keeps idle streams
// from being reaped by proxies.
const sseKeepalive = 15 * time.Second

// handleEvents streams broker events to the client as Server-Sent
// Events until the client disconnects or the server shuts down.
func handleEvents(events *supervisor.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fl, ok := w.(http.Flusher)
		if !ok {
			writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		ch, cancel := events.Subscribe(eventBufferSize)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fl.Flush()

		sseClients.Inc()
		defer sseClients.Dec()
		if zlog != nil {
			zlog.Debug().Str("remote", r.RemoteAddr).Msg("sse client connected")
		}

		ctx, cancelCtx := joinContexts(serverBaseCtx, r.Context())
		defer cancelCtx()

		keepalive := time.NewTicker(sseKeepalive)
		defer keepalive.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case e, chOpen := <-ch:
				if !chOpen {
					return
				}
				data, err := json.Marshal(e)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data); err != nil {
					return
				}
				fl.Flush()
			case <-keepalive.C:
				if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
					return
				}
				fl.Flush()
			}
		}
	}
}
