package types

// Process states reported by StatusResponse.State and Event.State.
const (
	StateNotStarted = "not_started"
	StateRunning    = "running"
	StateStopping   = "stopping"
	StateStopped    = "stopped"
	StateCrashed    = "crashed"
)

// StatusResponse is returned by GET /server/status.
type StatusResponse struct {
	// Current lifecycle state of the managed process.
	// example: running
	State string `json:"state" example:"running"`
	// Process ID of the child while running; last PID after exit.
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// Unique ID assigned to the current (or most recent) run.
	// example: 7b8e1f0c-9d2a-4c6e-8f33-5a1b2c3d4e5f
	RunID string `json:"run_id,omitempty" example:"7b8e1f0c-9d2a-4c6e-8f33-5a1b2c3d4e5f"`
	// RFC3339 timestamp of the last successful start.
	StartedAt string `json:"started_at,omitempty"`
	// Seconds since the child was started; zero when not running.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds,omitempty" example:"3600"`
	// Exit code of the last terminated run. -1 when killed by a signal.
	// example: 0
	ExitCode int `json:"exit_code,omitempty" example:"0"`
	// Name of the last profile loaded into the active configuration.
	// example: gpu-13b
	Profile string `json:"profile,omitempty" example:"gpu-13b"`
	// Last recoverable error observed by the controller, if any.
	LastError string `json:"last_error,omitempty"`
}

// LogsResponse wraps recent captured output lines for GET /server/logs.
type LogsResponse struct {
	// Most recent output lines, oldest first.
	Lines []string `json:"lines"`
}

// ProfilesResponse is returned by GET /profiles.
type ProfilesResponse struct {
	// Saved profile names in sorted order.
	Profiles []string `json:"profiles"`
	// Name of the last profile loaded into the active configuration.
	// example: gpu-13b
	Last string `json:"last,omitempty" example:"gpu-13b"`
}

// ModelFile describes one GGUF file found during a directory scan.
type ModelFile struct {
	// File name, including the .gguf extension.
	// example: tinyllama-q4.gguf
	Name string `json:"name" example:"tinyllama-q4.gguf"`
	// Absolute path, usable directly as model_path.
	// example: /models/tinyllama-q4.gguf
	Path string `json:"path" example:"/models/tinyllama-q4.gguf"`
	// File size in bytes.
	// example: 668788096
	SizeBytes int64 `json:"size_bytes" example:"668788096"`
	// RFC3339 modification time.
	ModifiedAt string `json:"modified_at,omitempty"`
}

// ModelsResponse is returned by GET /models.
type ModelsResponse struct {
	// Directory that was scanned, after home expansion.
	// example: /models
	Dir string `json:"dir" example:"/models"`
	// GGUF files directly under Dir, sorted by name.
	Models []ModelFile `json:"models"`
}

// HealthResponse reports the result of probing the managed server's own
// HTTP health endpoint (GET /server/health).
type HealthResponse struct {
	// Probe outcome: ok, unreachable, or not_running.
	// example: ok
	Status string `json:"status" example:"ok"`
	// Probed URL, when a probe was attempted.
	// example: http://127.0.0.1:8080/health
	URL string `json:"url,omitempty" example:"http://127.0.0.1:8080/health"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: profile not found
	Error string `json:"error" example:"profile not found"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
