package httpapi

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// publishUntil pumps an event into the broker until stop closes, so the
// subscriber always sees it no matter when the handler subscribed.
func publishUntil(b *supervisor.Broker, e types.Event, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		_ = b.Publish(e)
		time.Sleep(20 * time.Millisecond)
	}
}

func TestEventsStreamSSE(t *testing.T) {
	broker := supervisor.NewBroker()
	srv := httptest.NewServer(NewMux(&mockService{}, broker))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content-type=%s", ct)
	}

	stop := make(chan struct{})
	defer close(stop)
	go publishUntil(broker, types.Event{Type: types.EventLog, Line: "boot line"}, stop)

	reader := bufio.NewReader(resp.Body)
	sawEventField := false
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if strings.HasPrefix(line, "event: log") {
			sawEventField = true
		}
		if strings.HasPrefix(line, "data:") && strings.Contains(line, "boot line") {
			break
		}
	}
	if !sawEventField {
		t.Error("no event: field before data frame")
	}
}

func TestWebsocketStream(t *testing.T) {
	broker := supervisor.NewBroker()
	srv := httptest.NewServer(NewMux(&mockService{}, broker))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	stop := make(chan struct{})
	defer close(stop)
	go publishUntil(broker, types.Event{Type: types.EventState, State: types.StateRunning}, stop)

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var e types.Event
		if err := conn.ReadJSON(&e); err != nil {
			t.Fatalf("read: %v", err)
		}
		if e.Type == types.EventState && e.State == types.StateRunning {
			return
		}
	}
}
