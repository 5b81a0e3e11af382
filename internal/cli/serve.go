package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coremaven/llama.cpp-GUI/internal/config"
	"github.com/coremaven/llama.cpp-GUI/internal/httpapi"
	"github.com/coremaven/llama.cpp-GUI/internal/manager"
	"github.com/coremaven/llama.cpp-GUI/internal/settings"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
)

const shutdownTimeout = 5 * time.Second

// fnServe runs the control daemon: HTTP API plus event streams, a
// settings file watcher, and optional auto-start. It blocks until
// SIGINT/SIGTERM, then applies the configured shutdown policy to any
// running llama-server.
func fnServe(cfg *Config) error {
	dcfg, err := loadDaemonConfig(cfg)
	if err != nil {
		return err
	}
	if err := dcfg.Validate(); err != nil {
		return err
	}

	log := setupLogging(dcfg.LogLevel, dcfg.LogFormat)
	installLoggers(log)

	if dcfg.SettingsPath == "" {
		dcfg.SettingsPath = settings.DefaultPath
	}
	store, warn := settings.Open(dcfg.SettingsPath)
	if store == nil {
		return warn
	}
	if warn != nil {
		log.Warn().Err(warn).Str("path", store.Path()).Msg("settings load warning, using defaults")
	}

	broker := supervisor.NewBroker()
	sup := supervisor.New(supervisor.Options{
		LogPath:     dcfg.ServerLogPath,
		StopTimeout: dcfg.StopTimeout(),
		BufferLines: dcfg.LogBufferLines,
		Publisher:   broker,
	})
	mgr := manager.New(manager.Options{Store: store, Supervisor: sup, Publisher: broker})

	// Base context shared by the SSE and WebSocket streams; canceling it
	// is what unblocks them during shutdown.
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()
	httpapi.SetBaseContext(baseCtx)
	if len(dcfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, dcfg.CORSOrigins, nil, nil)
	}

	mux := httpapi.NewMux(mgr, broker)
	srv := &http.Server{Addr: dcfg.Addr, Handler: mux}

	watcher, err := settings.WatchFile(store.Path(), settings.DefaultDebounce, log, mgr.ReloadSettings)
	if err != nil {
		log.Warn().Err(err).Msg("settings watch disabled")
	} else {
		defer watcher.Close()
	}

	mgr.AutoStartIfConfigured()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", dcfg.Addr).Str("settings", store.Path()).Msg("control API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	cancelStreams()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	mgr.Shutdown(dcfg.OnShutdown)
	return nil
}

// loadDaemonConfig merges file, environment and command line:
// defaults < config file < LLAMAGUI_* env < explicit flags.
func loadDaemonConfig(cfg *Config) (config.Config, error) {
	var (
		dcfg config.Config
		err  error
	)
	if cfg.ConfigPath != "" {
		dcfg, err = config.Load(cfg.ConfigPath)
	} else {
		dcfg, err = config.FromEnv()
	}
	if err != nil {
		return dcfg, err
	}
	if cfg.SettingsPath != "" {
		dcfg.SettingsPath = cfg.SettingsPath
	}
	if cfg.LogLevel != "" {
		dcfg.LogLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" {
		dcfg.LogFormat = cfg.LogFormat
	}
	return dcfg, nil
}
