//go:build !windows

package e2e

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// The tests below build cmd/llamagui and drive the serve command as a
// separate process, covering the pieces in-process wiring cannot reach:
// flag and environment handling, signal shutdown, and the exit policy
// for a still-running child.

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/internal/e2e/daemon_bin_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func buildDaemonBinary(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "llamagui")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/llamagui")
	cmd.Dir = projectRootFromThisFile(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

// startDaemon launches `llamagui serve` and waits until its control API
// answers.
func startDaemon(t *testing.T, bin string, env []string, args ...string) (*exec.Cmd, string) {
	t.Helper()
	port := findFreePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := exec.Command(bin, append([]string{"serve"}, args...)...)
	cmd.Env = append(append(os.Environ(), env...), fmt.Sprintf("LLAMAGUI_ADDR=127.0.0.1:%d", port))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("daemon did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
	return cmd, base
}

// waitExit reaps the daemon process and returns its exit code.
func waitExit(t *testing.T, cmd *exec.Cmd, timeout time.Duration) int {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		if err == nil {
			return 0
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return ee.ExitCode()
		}
		t.Fatalf("wait: %v", err)
	case <-time.After(timeout):
		_ = cmd.Process.Kill()
		t.Fatalf("daemon did not exit within %v", timeout)
	}
	return -1
}

func waitPIDGone(t *testing.T, pid int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for syscall.Kill(pid, 0) == nil {
		if time.Now().After(deadline) {
			t.Fatalf("process %d still alive", pid)
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestDaemonBinary_StopPolicyOnShutdown(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary test in short mode")
	}
	bin := buildDaemonBinary(t)
	dir := t.TempDir()
	serverBin, model := writeServerFixture(t, `trap 'exit 0' TERM
while :; do sleep 0.1; done`)

	env := []string{
		"LLAMAGUI_SERVER_LOG_PATH=" + filepath.Join(dir, "server.log"),
		"LLAMAGUI_STOP_TIMEOUT_SECONDS=2",
	}
	cmd, base := startDaemon(t, bin, env, "--settings", filepath.Join(dir, "settings.json"))

	putConfig(t, base, types.ServerConfig{BinaryPath: serverBin, ModelPath: model, Port: 18200})
	resp, body := httpPostJSON(t, base+"/server/start", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: status=%d body=%s", resp.StatusCode, string(body))
	}
	st := waitForState(t, base, types.StateRunning)

	// SIGTERM: the default stop policy terminates the child before exit.
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("signal daemon: %v", err)
	}
	if code := waitExit(t, cmd, 15*time.Second); code != 0 {
		t.Fatalf("daemon exit code = %d, want 0", code)
	}
	waitPIDGone(t, st.PID, 5*time.Second)
}

func TestDaemonBinary_DetachPolicyLeavesChild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary test in short mode")
	}
	bin := buildDaemonBinary(t)
	dir := t.TempDir()
	serverBin, model := writeServerFixture(t, `trap 'exit 0' TERM
while :; do sleep 0.1; done`)

	cfgFile := filepath.Join(dir, "daemon.yaml")
	cfgBody := "on_shutdown: detach\n" +
		"settings_path: " + filepath.Join(dir, "settings.json") + "\n" +
		"server_log_path: " + filepath.Join(dir, "server.log") + "\n"
	if err := os.WriteFile(cfgFile, []byte(cfgBody), 0o644); err != nil {
		t.Fatalf("write daemon config: %v", err)
	}

	cmd, base := startDaemon(t, bin, nil, "--config", cfgFile)

	putConfig(t, base, types.ServerConfig{BinaryPath: serverBin, ModelPath: model, Port: 18201})
	resp, body := httpPostJSON(t, base+"/server/start", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: status=%d body=%s", resp.StatusCode, string(body))
	}
	st := waitForState(t, base, types.StateRunning)

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("signal daemon: %v", err)
	}
	if code := waitExit(t, cmd, 15*time.Second); code != 0 {
		t.Fatalf("daemon exit code = %d, want 0", code)
	}

	// The detach policy leaves the child running after the daemon is gone.
	if err := syscall.Kill(st.PID, 0); err != nil {
		t.Fatalf("child %d not alive after detach shutdown: %v", st.PID, err)
	}
	_ = syscall.Kill(st.PID, syscall.SIGKILL)
}
