// Package manager wires the settings store, the command builder and the
// process supervisor into the operations every front end calls. It is
// structured into small files by concern:
//
//   - manager.go: the Manager type, its options and construction.
//   - server_ops.go: start, stop, detach, status, logs and the health
//     probe against the managed server's own HTTP endpoint.
//   - config_ops.go: active configuration reads and updates, settings
//     reload on external file changes, auto-start and the exit policy.
//   - profile_ops.go: named configuration snapshots (list, show, save,
//     load, delete).
//
// Every mutation is persisted through the store and announced on the
// event publisher, so HTTP, SSE, websocket and TUI clients observe the
// same stream of truth.
package manager
