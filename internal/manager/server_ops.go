package manager

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/coremaven/llama.cpp-GUI/internal/launch"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// StartServer builds the command from the active configuration and
// launches it. The rendered command line is echoed as a log event
// before the spawn so every front end shows what ran. Validation
// failures and spawn failures are also published as error events.
func (m *Manager) StartServer() (types.StatusResponse, error) {
	if st := m.sup.Status(); st.State == types.StateRunning || st.State == types.StateStopping {
		return st, supervisor.NewAlreadyRunning(st.PID)
	}

	cfg := m.store.Config()
	args, err := launch.BuildArgs(cfg)
	if err != nil {
		zlog.Warn().Err(err).Msg("start rejected")
		_ = m.pub.Publish(types.Event{
			Type:    types.EventError,
			Message: err.Error(),
			Time:    time.Now(),
		})
		return m.Status(), err
	}

	display, _ := launch.CommandString(cfg)
	_ = m.pub.Publish(types.Event{
		Type: types.EventLog,
		Line: "executing: " + display,
		Time: time.Now(),
	})

	if err := m.sup.Start(args); err != nil {
		return m.Status(), err
	}
	zlog.Debug().Str("command", display).Msg("llama-server command")
	return m.Status(), nil
}

// StopServer terminates the running child gracefully, escalating to a
// kill after the supervisor's timeout.
func (m *Manager) StopServer() (types.StatusResponse, error) {
	if err := m.sup.Stop(); err != nil {
		return m.Status(), err
	}
	return m.Status(), nil
}

// DetachServer releases the running child from supervision, leaving it
// running. The released PID is returned.
func (m *Manager) DetachServer() (int, error) {
	return m.sup.Detach()
}

// Status reports the supervisor snapshot plus the last-active profile.
func (m *Manager) Status() types.StatusResponse {
	st := m.sup.Status()
	st.Profile = m.store.LastProfile()
	return st
}

// Logs returns up to tail recent child output lines, oldest first.
func (m *Manager) Logs(tail int) types.LogsResponse {
	lines := m.sup.Logs(tail)
	if lines == nil {
		lines = []string{}
	}
	return types.LogsResponse{Lines: lines}
}

// ServerLogPath returns the capture file the child's output is
// appended to.
func (m *Manager) ServerLogPath() string {
	return m.sup.LogPath()
}

// Health probes the managed server's own health endpoint. When no
// child is live the probe is skipped and not_running reported.
func (m *Manager) Health(ctx context.Context) types.HealthResponse {
	if m.sup.State() != types.StateRunning {
		return types.HealthResponse{Status: "not_running"}
	}
	cfg := m.store.Config()
	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	url := fmt.Sprintf("http://%s/health", net.JoinHostPort(host, fmt.Sprint(cfg.Port)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.HealthResponse{Status: "unreachable", URL: url}
	}
	resp, err := m.httpc.Do(req)
	if err != nil {
		return types.HealthResponse{Status: "unreachable", URL: url}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return types.HealthResponse{Status: "unreachable", URL: url}
	}
	return types.HealthResponse{Status: "ok", URL: url}
}
