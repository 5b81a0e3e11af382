package types

import "time"

// Event kinds.
const (
	EventState   = "state"
	EventLog     = "log"
	EventWarning = "warning"
	EventError   = "error"
	EventConfig  = "config"
	EventProfile = "profile"
)

// Profile event actions.
const (
	ProfileSaved   = "saved"
	ProfileLoaded  = "loaded"
	ProfileDeleted = "deleted"
)

// Event is the single notification shape pushed to every presentation
// layer (SSE, websocket, TUI). Fields are populated per Type; consumers
// switch on Type and ignore the rest.
type Event struct {
	// Event kind: state, log, warning, error, config, or profile.
	// example: state
	Type string `json:"type" example:"state"`
	// New process state, for state events.
	// example: running
	State string `json:"state,omitempty" example:"running"`
	// Previous process state, for state events.
	// example: not_started
	PrevState string `json:"prev_state,omitempty" example:"not_started"`
	// One line of child output, for log events.
	Line string `json:"line,omitempty"`
	// Human-readable detail for warning and error events.
	Message string `json:"message,omitempty"`
	// Profile name, for profile events.
	// example: gpu-13b
	Name string `json:"name,omitempty" example:"gpu-13b"`
	// Profile action (saved, loaded, deleted), for profile events.
	// example: saved
	Action string `json:"action,omitempty" example:"saved"`
	// Run this event belongs to, when tied to a child process run.
	RunID string `json:"run_id,omitempty"`
	// Child process ID, when known.
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// Exit code for terminal state events. -1 when killed by a signal.
	ExitCode int `json:"exit_code,omitempty"`
	// Time the event was published.
	Time time.Time `json:"time"`
}
