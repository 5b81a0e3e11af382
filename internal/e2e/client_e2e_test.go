//go:build !windows

package e2e

import (
	"context"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/coremaven/llama.cpp-GUI/pkg/client"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// Drives the full lifecycle through the typed client instead of raw
// HTTP, so the client package gets exercised against a real daemon.
func TestE2E_TypedClient(t *testing.T) {
	srv := newDaemon(t)
	bin, model := writeServerFixture(t, `echo "fixture server booted"
trap 'exit 0' TERM
while :; do sleep 0.1; done`)

	c := client.New(srv.URL)
	ctx := context.Background()

	if err := c.Healthy(ctx); err != nil {
		t.Fatalf("healthy: %v", err)
	}

	cfg, err := c.UpdateConfig(ctx, types.ServerConfig{
		BinaryPath: bin,
		ModelPath:  model,
		Host:       "127.0.0.1",
		Port:       18090,
	})
	if err != nil {
		t.Fatalf("update config: %v", err)
	}
	if cfg.Port != 18090 {
		t.Fatalf("returned port = %d, want 18090", cfg.Port)
	}

	st, err := c.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if st.State != types.StateRunning || st.PID <= 0 {
		t.Fatalf("status after start = %+v", st)
	}

	if _, err := c.Start(ctx); !client.IsConflict(err) {
		t.Fatalf("double start error = %v, want conflict", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		logs, err := c.Logs(ctx, 0)
		if err != nil {
			t.Fatalf("logs: %v", err)
		}
		if strings.Contains(strings.Join(logs.Lines, "\n"), "fixture server booted") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("boot line never appeared; got %v", logs.Lines)
		}
		time.Sleep(25 * time.Millisecond)
	}

	profiles, err := c.SaveProfile(ctx, "session", nil)
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if len(profiles.Profiles) != 1 || profiles.Profiles[0] != "session" {
		t.Fatalf("profiles = %v", profiles.Profiles)
	}

	loaded, err := c.Profile(ctx, "session")
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if loaded.Port != 18090 {
		t.Fatalf("profile port = %d, want 18090", loaded.Port)
	}

	st, err = c.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if st.State != types.StateStopped {
		t.Fatalf("state after stop = %q, want stopped", st.State)
	}

	if _, err := c.DeleteProfile(ctx, "session"); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	if _, err := c.Profile(ctx, "session"); !client.IsNotFound(err) {
		t.Fatalf("fetch deleted profile error = %v, want not found", err)
	}
}

// Detach through the client leaves the child running and resets the
// controller to a clean slate.
func TestE2E_TypedClientDetach(t *testing.T) {
	srv := newDaemon(t)
	bin, model := writeServerFixture(t, `trap 'exit 0' TERM
while :; do sleep 0.1; done`)

	c := client.New(srv.URL)
	ctx := context.Background()

	if _, err := c.UpdateConfig(ctx, types.ServerConfig{BinaryPath: bin, ModelPath: model, Port: 18091}); err != nil {
		t.Fatalf("update config: %v", err)
	}
	st, err := c.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	pid, err := c.Detach(ctx)
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if pid != st.PID {
		t.Fatalf("detached pid = %d, want %d", pid, st.PID)
	}
	t.Cleanup(func() { _ = syscall.Kill(pid, syscall.SIGKILL) })

	after, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if after.State != types.StateNotStarted {
		t.Fatalf("state after detach = %q, want not_started", after.State)
	}
}
