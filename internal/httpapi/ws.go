package httpapi

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     wsOriginAllowed,
}

// wsOriginAllowed accepts same-host upgrades always and cross-origin
// upgrades only for origins the CORS configuration allows.
func wsOriginAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if corsEnabled {
		for _, o := range corsAllowedOrigins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// handleWS streams broker events over a websocket, one JSON event per
// text frame. Client frames are read only to notice disconnects.
func handleWS(events *supervisor.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// The upgrader already replied.
			return
		}
		defer conn.Close()

		wsClients.Inc()
		defer wsClients.Dec()
		if zlog != nil {
			zlog.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")
		}

		ch, cancel := events.Subscribe(eventBufferSize)
		defer cancel()

		ctx, cancelCtx := joinContexts(serverBaseCtx, r.Context())
		defer cancelCtx()

		// After the hijack the request context stops firing, so a reader
		// goroutine is the disconnect signal.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancelCtx()
					return
				}
			}
		}()

		ping := time.NewTicker(wsPingInterval)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			case e, chOpen := <-ch:
				if !chOpen {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(e); err != nil {
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}
