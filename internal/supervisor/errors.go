package supervisor

import "fmt"

type alreadyRunningError struct {
	pid int
}

func (e *alreadyRunningError) Error() string {
	return fmt.Sprintf("llama-server already running (pid %d)", e.pid)
}

// NewAlreadyRunning reports a start attempt while a child is live.
func NewAlreadyRunning(pid int) error {
	return &alreadyRunningError{pid: pid}
}

// IsAlreadyRunning returns true if err rejects a duplicate start.
func IsAlreadyRunning(err error) bool {
	_, ok := err.(*alreadyRunningError)
	return ok
}

type notRunningError struct {
	state string
}

func (e *notRunningError) Error() string {
	return fmt.Sprintf("llama-server is not running (state %s)", e.state)
}

// NewNotRunning reports a stop or detach attempt with no live child.
func NewNotRunning(state string) error {
	return &notRunningError{state: state}
}

// IsNotRunning returns true if err rejects an operation that needs a
// live child.
func IsNotRunning(err error) bool {
	_, ok := err.(*notRunningError)
	return ok
}

type spawnError struct {
	msg string
}

func (e *spawnError) Error() string {
	return e.msg
}

// NewSpawnError reports a failure to launch the child process.
func NewSpawnError(format string, args ...interface{}) error {
	return &spawnError{msg: fmt.Sprintf(format, args...)}
}

// IsSpawn returns true if err is a child launch failure.
func IsSpawn(err error) bool {
	_, ok := err.(*spawnError)
	return ok
}
