package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// stubDaemon serves just enough of the control API for the remote
// commands.
func stubDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	// Go 1.21's ServeMux has no method patterns, so guard methods by hand.
	handle := func(method, path string, h http.HandlerFunc) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
				return
			}
			h(w, r)
		})
	}
	handle(http.MethodGet, "/server/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.StatusResponse{State: types.StateRunning, PID: 4242, UptimeSeconds: 61, Profile: "alpha"})
	})
	handle(http.MethodPost, "/server/start", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(types.ErrorResponse{Error: "llama-server already running (pid 4242)", Code: 409})
	})
	handle(http.MethodPost, "/server/stop", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.StatusResponse{State: types.StateStopped, ExitCode: 0})
	})
	handle(http.MethodPost, "/server/detach", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"pid": 4242, "state": types.StateNotStarted})
	})
	handle(http.MethodGet, "/server/logs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.LogsResponse{Lines: []string{"one", "two"}})
	})
	handle(http.MethodGet, "/server/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.HealthResponse{Status: "ok", URL: "http://127.0.0.1:8080/health"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteStatus(t *testing.T) {
	srv := stubDaemon(t)
	if code := MainWithArgs([]string{"--addr", srv.URL, "status"}); code != 0 {
		t.Fatalf("exit=%d", code)
	}
}

func TestRemoteStartConflictFails(t *testing.T) {
	srv := stubDaemon(t)
	if code := MainWithArgs([]string{"--addr", srv.URL, "start"}); code == 0 {
		t.Fatal("conflict must map to a non-zero exit")
	}
}

func TestRemoteStopDetachLogsHealth(t *testing.T) {
	srv := stubDaemon(t)
	for _, cmd := range [][]string{
		{"stop"}, {"detach"}, {"logs"}, {"logs", "--tail", "1"}, {"health"},
	} {
		args := append([]string{"--addr", srv.URL}, cmd...)
		if code := MainWithArgs(args); code != 0 {
			t.Errorf("%v exit=%d", cmd, code)
		}
	}
}

func TestRemoteUnreachable(t *testing.T) {
	// closed port: the transport error should surface as a failure
	if code := MainWithArgs([]string{"--addr", "http://127.0.0.1:1", "status"}); code == 0 {
		t.Fatal("expected failure against a dead daemon")
	}
}
