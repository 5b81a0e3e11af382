package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coremaven/llama.cpp-GUI/internal/httpapi"
	"github.com/coremaven/llama.cpp-GUI/internal/manager"
	"github.com/coremaven/llama.cpp-GUI/internal/settings"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// newDaemon wires a real settings store, supervisor and manager behind the
// HTTP mux, exactly as the serve command does, and returns a test server
// speaking the control API.
func newDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	store, err := settings.Open(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("open settings: %v", err)
	}
	broker := supervisor.NewBroker()
	sup := supervisor.New(supervisor.Options{
		LogPath:     filepath.Join(dir, "server.log"),
		StopTimeout: 2 * time.Second,
		BufferLines: 200,
		Publisher:   broker,
	})
	mgr := manager.New(manager.Options{Store: store, Supervisor: sup, Publisher: broker})
	srv := httptest.NewServer(httpapi.NewMux(mgr, broker))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { mgr.Shutdown(manager.ShutdownStop) })
	return srv
}

// writeServerFixture drops an executable shell script standing in for
// llama-server plus a placeholder model file, so launches can pass
// validation without a real binary.
func writeServerFixture(t *testing.T, script string) (bin, model string) {
	t.Helper()
	dir := t.TempDir()
	bin = filepath.Join(dir, "llama-server")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write fixture binary: %v", err)
	}
	model = filepath.Join(dir, "model.gguf")
	if err := os.WriteFile(model, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("write fixture model: %v", err)
	}
	return bin, model
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func httpPutJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func httpDelete(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

// putConfig pushes cfg through PUT /config and fails the test on anything
// but a 200.
func putConfig(t *testing.T, baseURL string, cfg types.ServerConfig) {
	t.Helper()
	b, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	resp, body := httpPutJSON(t, baseURL+"/config", b)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /config: status=%d body=%s", resp.StatusCode, string(body))
	}
}

// waitForState polls GET /server/status until the reported state matches
// want or the deadline passes.
func waitForState(t *testing.T, baseURL, want string) types.StatusResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var st types.StatusResponse
	for {
		_, body := httpGet(t, baseURL+"/server/status")
		if err := json.Unmarshal(body, &st); err != nil {
			t.Fatalf("unmarshal status: %v", err)
		}
		if st.State == want {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("state never became %q; last status=%+v", want, st)
		}
		time.Sleep(25 * time.Millisecond)
	}
}
