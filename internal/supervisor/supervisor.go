package supervisor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

var zlog = zerolog.Nop()

// SetLogger installs the package logger. The default discards everything.
func SetLogger(l zerolog.Logger) {
	zlog = l
}

const (
	// DefaultStopTimeout is the graceful window between the termination
	// signal and the forced kill.
	DefaultStopTimeout = 5 * time.Second

	// DefaultBufferLines caps the in-memory ring of recent output lines.
	DefaultBufferLines = 1000

	// followInterval is how often the output follower polls the capture
	// file for new bytes.
	followInterval = 100 * time.Millisecond

	// drainGrace bounds how long a child exit waits for the follower to
	// flush remaining output before the final state is published.
	drainGrace = 2 * time.Second
)

// Options configure a Supervisor. Zero values fall back to package
// defaults.
type Options struct {
	// LogPath is the append-mode file receiving the child's stdout and
	// stderr. Defaults to llamagui-server.log in the OS temp directory.
	LogPath string

	// StopTimeout is the graceful window before a kill.
	StopTimeout time.Duration

	// BufferLines caps the in-memory output ring.
	BufferLines int

	// Publisher receives all emitted events.
	Publisher Publisher
}

// Supervisor manages at most one llama-server child process. All
// methods are safe for concurrent use.
type Supervisor struct {
	opts Options
	pub  Publisher

	mu            sync.Mutex
	state         string
	cmd           *exec.Cmd
	runID         string
	pid           int
	startedAt     time.Time
	exitCode      int
	lastErr       string
	stopRequested bool
	done          chan struct{}
	followCancel  chan struct{}

	buf *logBuffer
}

// New returns a Supervisor in the not_started state.
func New(opts Options) *Supervisor {
	if opts.LogPath == "" {
		opts.LogPath = filepath.Join(os.TempDir(), "llamagui-server.log")
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	if opts.BufferLines <= 0 {
		opts.BufferLines = DefaultBufferLines
	}
	if opts.Publisher == nil {
		opts.Publisher = NewNoopPublisher()
	}
	return &Supervisor{
		opts:  opts,
		pub:   opts.Publisher,
		state: types.StateNotStarted,
		buf:   newLogBuffer(opts.BufferLines),
	}
}

// LogPath returns the capture file the child's output is appended to.
func (s *Supervisor) LogPath() string {
	return s.opts.LogPath
}

// Start launches the child described by args (binary first, then its
// arguments). While a child is live the call is rejected with an
// already-running error. A launch failure leaves the previous state
// untouched and is reported as a spawn error.
func (s *Supervisor) Start(args []string) error {
	if len(args) == 0 {
		return NewSpawnError("empty command")
	}

	s.mu.Lock()
	if s.state == types.StateRunning || s.state == types.StateStopping {
		pid := s.pid
		s.mu.Unlock()
		return NewAlreadyRunning(pid)
	}
	prev := s.state

	if err := os.MkdirAll(filepath.Dir(s.opts.LogPath), 0o755); err != nil {
		s.mu.Unlock()
		return NewSpawnError("create log directory: %v", err)
	}
	f, err := os.OpenFile(s.opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.mu.Unlock()
		return NewSpawnError("open log file %s: %v", s.opts.LogPath, err)
	}
	offset := int64(0)
	if fi, err := f.Stat(); err == nil {
		offset = fi.Size()
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = f
	cmd.Stderr = f
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		f.Close()
		s.lastErr = err.Error()
		s.mu.Unlock()
		zlog.Error().Err(err).Str("binary", args[0]).Msg("llama-server failed to start")
		_ = s.pub.Publish(types.Event{
			Type:    types.EventError,
			Message: fmt.Sprintf("failed to start %s: %v", args[0], err),
			Time:    time.Now(),
		})
		return NewSpawnError("start %s: %v", args[0], err)
	}
	// The child holds its own descriptor now.
	f.Close()

	runID := uuid.NewString()
	pid := cmd.Process.Pid
	procExited := make(chan struct{})
	followDone := make(chan struct{})
	stopFollow := make(chan struct{})
	done := make(chan struct{})

	s.buf.Clear()
	s.cmd = cmd
	s.runID = runID
	s.pid = pid
	s.startedAt = time.Now()
	s.exitCode = 0
	s.lastErr = ""
	s.stopRequested = false
	s.state = types.StateRunning
	s.done = done
	s.followCancel = stopFollow

	startsTotal.Inc()
	upGauge.Set(1)
	s.publishState(prev, types.StateRunning, runID, pid, 0)
	s.mu.Unlock()

	zlog.Info().Str("run_id", runID).Int("pid", pid).Str("binary", args[0]).Msg("llama-server started")

	go s.follower(s.opts.LogPath, offset, runID, pid, procExited, stopFollow, followDone)
	go s.waiter(cmd, runID, pid, procExited, followDone, done)
	return nil
}

// Stop asks the running child to exit, waits up to the configured
// timeout, then kills it. It returns a not-running error when no child
// is live and nil once the child has fully terminated.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	if s.state != types.StateRunning {
		state := s.state
		s.mu.Unlock()
		return NewNotRunning(state)
	}
	prev := s.state
	s.state = types.StateStopping
	s.stopRequested = true
	cmd := s.cmd
	runID := s.runID
	pid := s.pid
	done := s.done
	s.publishState(prev, types.StateStopping, runID, pid, 0)
	s.mu.Unlock()

	stopsTotal.Inc()
	zlog.Info().Str("run_id", runID).Int("pid", pid).Dur("timeout", s.opts.StopTimeout).Msg("stopping llama-server")

	if err := terminate(cmd.Process); err != nil {
		zlog.Warn().Err(err).Int("pid", pid).Msg("termination signal failed")
	}

	select {
	case <-done:
		return nil
	case <-time.After(s.opts.StopTimeout):
	}

	stopTimeoutsTotal.Inc()
	zlog.Warn().Str("run_id", runID).Int("pid", pid).Msg("graceful stop timed out, killing")
	_ = s.pub.Publish(types.Event{
		Type:    types.EventWarning,
		Message: fmt.Sprintf("llama-server did not exit within %s, killing pid %d", s.opts.StopTimeout, pid),
		RunID:   runID,
		PID:     pid,
		Time:    time.Now(),
	})
	if err := cmd.Process.Kill(); err != nil {
		zlog.Warn().Err(err).Int("pid", pid).Msg("kill failed")
	}
	<-done
	return nil
}

// Detach releases the running child from supervision without stopping
// it. The child keeps running in its own process group with output
// still appended to the capture file; the supervisor returns to
// not_started and may launch a fresh child. The released PID is
// returned.
func (s *Supervisor) Detach() (int, error) {
	s.mu.Lock()
	if s.state != types.StateRunning {
		state := s.state
		s.mu.Unlock()
		return 0, NewNotRunning(state)
	}
	prev := s.state
	pid := s.pid
	runID := s.runID
	stopFollow := s.followCancel

	s.state = types.StateNotStarted
	s.cmd = nil
	s.runID = ""
	s.pid = 0
	s.exitCode = 0
	s.lastErr = ""
	s.stopRequested = false

	close(stopFollow)
	upGauge.Set(0)
	_ = s.pub.Publish(types.Event{
		Type:      types.EventState,
		State:     types.StateNotStarted,
		PrevState: prev,
		Message:   fmt.Sprintf("pid %d left running", pid),
		RunID:     runID,
		PID:       pid,
		Time:      time.Now(),
	})
	s.mu.Unlock()

	zlog.Info().Str("run_id", runID).Int("pid", pid).Msg("llama-server detached, left running")
	return pid, nil
}

// Status returns a point-in-time snapshot of the supervised child.
func (s *Supervisor) Status() types.StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := types.StatusResponse{
		State:     s.state,
		PID:       s.pid,
		RunID:     s.runID,
		ExitCode:  s.exitCode,
		LastError: s.lastErr,
	}
	if !s.startedAt.IsZero() {
		st.StartedAt = s.startedAt.UTC().Format(time.RFC3339)
	}
	if s.state == types.StateRunning || s.state == types.StateStopping {
		st.UptimeSeconds = int64(time.Since(s.startedAt).Seconds())
	}
	return st
}

// State returns the current lifecycle state.
func (s *Supervisor) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Logs returns up to tail recent output lines, oldest first. tail <= 0
// returns everything buffered.
func (s *Supervisor) Logs(tail int) []string {
	return s.buf.Tail(tail)
}

// publishState emits a state transition event. Callers hold s.mu so
// state events are observed in machine order.
func (s *Supervisor) publishState(prev, next, runID string, pid, exitCode int) {
	_ = s.pub.Publish(types.Event{
		Type:      types.EventState,
		State:     next,
		PrevState: prev,
		RunID:     runID,
		PID:       pid,
		ExitCode:  exitCode,
		Time:      time.Now(),
	})
}

// waiter reaps the child, lets the follower drain remaining output,
// classifies the exit and publishes the terminal state.
func (s *Supervisor) waiter(cmd *exec.Cmd, runID string, pid int, procExited, followDone, done chan struct{}) {
	werr := cmd.Wait()
	close(procExited)

	select {
	case <-followDone:
	case <-time.After(drainGrace):
	}

	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}

	s.mu.Lock()
	if s.runID != runID {
		// Detached while we were waiting; the run is no longer ours.
		s.mu.Unlock()
		return
	}
	prev := s.state
	final := types.StateStopped
	if !s.stopRequested && code != 0 {
		final = types.StateCrashed
	}
	s.state = final
	s.exitCode = code
	s.cmd = nil
	if final == types.StateCrashed {
		s.lastErr = fmt.Sprintf("llama-server exited with code %d", code)
	}
	upGauge.Set(0)
	s.publishState(prev, final, runID, pid, code)
	s.mu.Unlock()

	if final == types.StateCrashed {
		crashesTotal.Inc()
		zlog.Error().AnErr("wait_err", werr).Str("run_id", runID).Int("pid", pid).Int("exit_code", code).Msg("llama-server crashed")
	} else {
		zlog.Info().Str("run_id", runID).Int("pid", pid).Int("exit_code", code).Msg("llama-server stopped")
	}
	close(done)
}

// follower tails the capture file from offset, emitting complete lines
// as log events. It exits after the final drain once the child is gone,
// or immediately on detach.
func (s *Supervisor) follower(path string, offset int64, runID string, pid int, procExited, stopFollow, followDone chan struct{}) {
	defer close(followDone)

	f, err := os.Open(path)
	if err != nil {
		zlog.Warn().Err(err).Str("path", path).Msg("cannot follow server output")
		return
	}
	defer f.Close()
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		zlog.Warn().Err(err).Str("path", path).Msg("cannot seek server output")
		return
	}

	var pending []byte
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-stopFollow:
			return
		default:
		}

		n, rerr := f.Read(buf)
		if n > 0 {
			pending = s.emitLines(append(pending, buf[:n]...), runID, pid)
			continue
		}
		if rerr != nil && rerr != io.EOF {
			zlog.Warn().Err(rerr).Str("path", path).Msg("server output read failed")
			return
		}

		select {
		case <-stopFollow:
			return
		case <-procExited:
			pending = s.drainFile(f, pending, runID, pid)
			if len(pending) > 0 {
				s.emitLine(strings.TrimRight(string(pending), "\r"), runID, pid)
			}
			return
		case <-time.After(followInterval):
		}
	}
}

// drainFile reads the capture file to EOF after the child exited so no
// trailing output is lost.
func (s *Supervisor) drainFile(f *os.File, pending []byte, runID string, pid int) []byte {
	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			pending = s.emitLines(append(pending, buf[:n]...), runID, pid)
			continue
		}
		if err != nil || n == 0 {
			return pending
		}
	}
}

// emitLines publishes every complete line in data and returns the
// unterminated remainder.
func (s *Supervisor) emitLines(data []byte, runID string, pid int) []byte {
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return data
		}
		line := strings.TrimRight(string(data[:i]), "\r")
		data = data[i+1:]
		s.emitLine(line, runID, pid)
	}
}

func (s *Supervisor) emitLine(line, runID string, pid int) {
	s.buf.Add(line)
	logLinesTotal.Inc()
	_ = s.pub.Publish(types.Event{
		Type:  types.EventLog,
		Line:  line,
		RunID: runID,
		PID:   pid,
		Time:  time.Now(),
	})
}
