// Package cli implements the llamagui command tree: the serve daemon,
// the standalone run and tui modes, local config/profile editing, and
// the remote commands that talk to a running daemon over its HTTP API.
package cli

import (
	"fmt"
	"os"
)

// Config carries the global command-line options shared by every
// subcommand. Empty strings mean "not set"; each command falls back to
// its own default.
type Config struct {
	ConfigPath   string // daemon configuration file (serve)
	Addr         string // daemon base URL (status/start/stop/detach/logs/health)
	SettingsPath string // settings document override
	LogLevel     string
	LogFormat    string
}

func defaultCLIConfig() *Config {
	return &Config{
		ConfigPath:   envStr("LLAMAGUI_CONFIG", ""),
		Addr:         envStr("LLAMAGUI_ADDR", ""),
		SettingsPath: envStr("LLAMAGUI_SETTINGS_PATH", ""),
	}
}

func (c *Config) logLevel() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return envStr("LLAMAGUI_LOG_LEVEL", "info")
}

func (c *Config) logFormat() string {
	if c.LogFormat != "" {
		return c.LogFormat
	}
	return envStr("LLAMAGUI_LOG_FORMAT", "console")
}

// MainWithArgs is a testable variant of Main that accepts args
// explicitly. It returns an exit code (0 for success, non-zero on
// error).
func MainWithArgs(args []string) int {
	root := buildRootCmdWith(defaultCLIConfig())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/llamagui.
func Main() int { return MainWithArgs(os.Args[1:]) }
