// Package supervisor owns the lifecycle of the single managed
// llama-server child process. It is structured into small files by
// concern:
//
//   - supervisor.go: the Supervisor state machine (start, stop, detach,
//     status, output capture).
//   - events.go: Publisher contract and the fan-out Broker that feeds
//     every presentation layer.
//   - eventpub_memory.go: in-memory publisher for tests.
//   - errors.go: error types and helpers (IsAlreadyRunning, IsNotRunning,
//     IsSpawn).
//   - logbuf.go: bounded ring of recent child output lines.
//   - metrics.go: prometheus counters/gauges for runs and events.
//   - proc_unix.go / proc_windows.go: process-group attributes and the
//     graceful-termination signal per platform.
//
// The state machine is: not_started -> running -> stopping -> stopped,
// with running -> stopped/crashed on external exit (classified by exit
// code) and re-entrant starts from stopped/crashed. Exactly one child is
// ever live per Supervisor; a second start is rejected.
package supervisor
