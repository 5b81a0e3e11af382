package manager

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/coremaven/llama.cpp-GUI/internal/settings"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
)

var zlog = zerolog.Nop()

// SetLogger installs the package logger. The default discards everything.
func SetLogger(l zerolog.Logger) {
	zlog = l
}

// Exit policies for a child still running when the controller shuts
// down.
const (
	// ShutdownStop terminates the child on exit.
	ShutdownStop = "stop"
	// ShutdownDetach leaves the child running on exit.
	ShutdownDetach = "detach"
)

// healthProbeTimeout bounds the request against the managed server's
// own health endpoint.
const healthProbeTimeout = 2 * time.Second

// Options configure a Manager.
type Options struct {
	// Store holds the persisted launch configuration and profiles.
	Store *settings.Store

	// Supervisor owns the llama-server child process.
	Supervisor *supervisor.Supervisor

	// Publisher receives config and profile events. Defaults to the
	// no-op publisher; pass the broker shared with the Supervisor so
	// all events reach the same subscribers.
	Publisher supervisor.Publisher
}

// Manager is the single entry point for all control operations. It is
// safe for concurrent use.
type Manager struct {
	store *settings.Store
	sup   *supervisor.Supervisor
	pub   supervisor.Publisher
	httpc *http.Client
}

// New returns a Manager over the given store and supervisor.
func New(opts Options) *Manager {
	if opts.Publisher == nil {
		opts.Publisher = supervisor.NewNoopPublisher()
	}
	return &Manager{
		store: opts.Store,
		sup:   opts.Supervisor,
		pub:   opts.Publisher,
		httpc: &http.Client{Timeout: healthProbeTimeout},
	}
}

// SettingsPath returns the expanded location of the settings document.
func (m *Manager) SettingsPath() string {
	return m.store.Path()
}
