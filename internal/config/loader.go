package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix for environment overrides, e.g. LLAMAGUI_ADDR.
const envPrefix = "llamagui"

// Config holds runtime parameters for the control daemon.
// Precedence is defaults < config file < LLAMAGUI_* environment variables.
type Config struct {
	// Addr is the HTTP listen address for the control API.
	Addr string `json:"addr" yaml:"addr" toml:"addr" envconfig:"ADDR"`
	// SettingsPath locates the settings file; empty means the per-user default.
	SettingsPath string `json:"settings_path" yaml:"settings_path" toml:"settings_path" envconfig:"SETTINGS_PATH"`
	// ServerLogPath is the llama-server capture file; empty means the temp dir.
	ServerLogPath string `json:"server_log_path" yaml:"server_log_path" toml:"server_log_path" envconfig:"SERVER_LOG_PATH"`
	// StopTimeoutSeconds bounds the graceful-stop wait before a hard kill.
	StopTimeoutSeconds int `json:"stop_timeout_seconds" yaml:"stop_timeout_seconds" toml:"stop_timeout_seconds" envconfig:"STOP_TIMEOUT_SECONDS"`
	// LogBufferLines is the size of the in-memory server output ring.
	LogBufferLines int `json:"log_buffer_lines" yaml:"log_buffer_lines" toml:"log_buffer_lines" envconfig:"LOG_BUFFER_LINES"`
	// LogLevel is one of debug|info|warn|error.
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level" envconfig:"LOG_LEVEL"`
	// LogFormat is console or json.
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format" envconfig:"LOG_FORMAT"`
	// CORSOrigins enables CORS for the listed origins when non-empty.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" envconfig:"CORS_ORIGINS"`
	// OnShutdown is what happens to a running llama-server when the daemon
	// exits: stop terminates it, detach leaves it running.
	OnShutdown string `json:"on_shutdown" yaml:"on_shutdown" toml:"on_shutdown" envconfig:"ON_SHUTDOWN"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:               "127.0.0.1:8099",
		StopTimeoutSeconds: 5,
		LogBufferLines:     1000,
		LogLevel:           "info",
		LogFormat:          "console",
		OnShutdown:         "stop",
	}
}

// Load reads a configuration file based on its extension and applies
// environment overrides on top. Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil { return cfg, err }
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil { return cfg, err }
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil { return cfg, err }
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("environment overrides: %w", err)
	}
	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied,
// for running without a configuration file.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("environment overrides: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.StopTimeoutSeconds <= 0 {
		return fmt.Errorf("stop_timeout_seconds must be positive, got %d", c.StopTimeoutSeconds)
	}
	if c.LogBufferLines <= 0 {
		return fmt.Errorf("log_buffer_lines must be positive, got %d", c.LogBufferLines)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug|info|warn|error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	switch c.OnShutdown {
	case "stop", "detach":
	default:
		return fmt.Errorf("on_shutdown must be stop or detach, got %q", c.OnShutdown)
	}
	return nil
}

// StopTimeout returns StopTimeoutSeconds as a duration.
func (c Config) StopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutSeconds) * time.Second
}
