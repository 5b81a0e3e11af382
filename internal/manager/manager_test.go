package manager

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coremaven/llama.cpp-GUI/internal/settings"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

func newTestManager(t *testing.T) (*Manager, *supervisor.MemoryPublisher) {
	t.Helper()
	dir := t.TempDir()
	store, err := settings.Open(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	pub := supervisor.NewMemoryPublisher()
	sup := supervisor.New(supervisor.Options{
		LogPath:     filepath.Join(dir, "server.log"),
		StopTimeout: 2 * time.Second,
		BufferLines: 100,
		Publisher:   pub,
	})
	return New(Options{Store: store, Supervisor: sup, Publisher: pub}), pub
}

// writeLaunchFixture creates an executable stand-in binary with the
// given script body plus a model file, so configurations validate.
func writeLaunchFixture(t *testing.T, script string) (bin, model string) {
	t.Helper()
	dir := t.TempDir()
	bin = filepath.Join(dir, "llama-server")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	model = filepath.Join(dir, "model.gguf")
	if err := os.WriteFile(model, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return bin, model
}

func waitForManagerState(t *testing.T, m *Manager, state string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.Status().State == state {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("state = %q, want %q within %s", m.Status().State, state, timeout)
}

func countEvents(events []types.Event, typ string) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}
