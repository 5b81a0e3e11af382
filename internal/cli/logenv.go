package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/coremaven/llama.cpp-GUI/internal/httpapi"
	"github.com/coremaven/llama.cpp-GUI/internal/manager"
	"github.com/coremaven/llama.cpp-GUI/internal/settings"
	"github.com/coremaven/llama.cpp-GUI/internal/supervisor"
)

// setupLogging builds the root logger. format "console" renders
// human-readable lines on stderr; anything else emits JSON.
func setupLogging(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var out io.Writer = os.Stderr
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// installLoggers hands component loggers to every package that accepts
// one.
func installLoggers(log zerolog.Logger) {
	supervisor.SetLogger(log.With().Str("component", "supervisor").Logger())
	manager.SetLogger(log.With().Str("component", "manager").Logger())
	httpapi.SetLogger(log.With().Str("component", "http").Logger())
}

// openStore opens the settings document honoring the --settings
// override. Load warnings are not fatal: the store falls back to
// defaults and the warning is logged.
func openStore(cfg *Config, log zerolog.Logger) (*settings.Store, error) {
	path := cfg.SettingsPath
	if path == "" {
		path = settings.DefaultPath
	}
	store, warn := settings.Open(path)
	if store == nil {
		return nil, warn
	}
	if warn != nil {
		log.Warn().Err(warn).Str("path", store.Path()).Msg("settings load warning, using defaults")
	}
	return store, nil
}

// Env helpers
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
