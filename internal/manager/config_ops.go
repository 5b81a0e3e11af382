package manager

import (
	"fmt"
	"time"

	"github.com/coremaven/llama.cpp-GUI/internal/launch"
	"github.com/coremaven/llama.cpp-GUI/internal/models"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// Config returns a copy of the active launch configuration.
func (m *Manager) Config() types.ServerConfig {
	return m.store.Config()
}

// Models lists GGUF files under dir so clients can offer a model
// picker. An empty dir falls back to the directory of the configured
// model path.
func (m *Manager) Models(dir string) (types.ModelsResponse, error) {
	if dir == "" {
		dir = models.DefaultDir(m.store.Config())
	}
	if dir == "" {
		return types.ModelsResponse{}, launch.NewValidationError("dir", "no directory given and no model_path configured")
	}
	abs, err := models.ResolveDir(dir)
	if err != nil {
		return types.ModelsResponse{}, launch.NewValidationError("dir", "%v", err)
	}
	files, err := models.Scan(abs)
	if err != nil {
		return types.ModelsResponse{}, launch.NewValidationError("dir", "%v", err)
	}
	return types.ModelsResponse{Dir: abs, Models: files}, nil
}

// UpdateConfig replaces the active configuration and persists it. Only
// structural problems (port range, untokenizable extra arguments) are
// rejected here; paths may point at files that do not exist yet, since
// launch-time validation runs on every start. A config event is
// published on success.
func (m *Manager) UpdateConfig(cfg types.ServerConfig) (types.ServerConfig, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return m.store.Config(), launch.NewValidationError("port", "out of range: %d", cfg.Port)
	}
	if _, err := launch.SplitExtraArgs(cfg.ExtraArgs); err != nil {
		return m.store.Config(), launch.NewValidationError("additional_args", "%v", err)
	}

	m.store.SetConfig(cfg)
	if err := m.store.Save(); err != nil {
		return cfg, err
	}
	zlog.Info().Msg("configuration updated")
	_ = m.pub.Publish(types.Event{Type: types.EventConfig, Time: time.Now()})
	return cfg, nil
}

// ReloadSettings re-reads the settings document after an external
// change. A config event is published only when the document actually
// differed, so reloads triggered by our own saves stay silent.
func (m *Manager) ReloadSettings() {
	changed, warn := m.store.Reload()
	if warn != nil {
		zlog.Warn().Err(warn).Msg("settings reload")
		_ = m.pub.Publish(types.Event{
			Type:    types.EventWarning,
			Message: warn.Error(),
			Time:    time.Now(),
		})
	}
	if changed {
		zlog.Info().Str("path", m.store.Path()).Msg("settings reloaded from disk")
		_ = m.pub.Publish(types.Event{Type: types.EventConfig, Time: time.Now()})
	}
}

// AutoStartIfConfigured launches the server when auto_start is set in
// the active configuration. A failure is reported as a warning event,
// never a boot failure.
func (m *Manager) AutoStartIfConfigured() {
	if !m.store.Config().AutoStart {
		return
	}
	zlog.Info().Msg("auto-start enabled, launching llama-server")
	if _, err := m.StartServer(); err != nil {
		zlog.Warn().Err(err).Msg("auto-start failed")
		_ = m.pub.Publish(types.Event{
			Type:    types.EventWarning,
			Message: fmt.Sprintf("auto-start failed: %v", err),
			Time:    time.Now(),
		})
	}
}

// Shutdown applies the exit policy to a still-running child:
// ShutdownDetach leaves it running, anything else stops it.
func (m *Manager) Shutdown(policy string) {
	st := m.sup.State()
	if st != types.StateRunning && st != types.StateStopping {
		return
	}
	if policy == ShutdownDetach {
		if pid, err := m.sup.Detach(); err == nil {
			zlog.Info().Int("pid", pid).Msg("leaving llama-server running on exit")
		}
		return
	}
	if err := m.sup.Stop(); err != nil {
		zlog.Warn().Err(err).Msg("stop on shutdown")
	}
}
