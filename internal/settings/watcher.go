package settings

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the event bursts editors and atomic renames
// produce into a single notification.
const DefaultDebounce = 200 * time.Millisecond

// Watcher notifies when the settings document changes on disk, so a
// running daemon picks up edits made by the CLI or a text editor.
// The parent directory is watched, not the file: saves go through a
// temp-file rename, which would silently detach a file-level watch.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// WatchFile starts watching path and invokes onChange (from a timer
// goroutine) after each debounced burst of changes.
func WatchFile(path string, debounce time.Duration, log zerolog.Logger, onChange func()) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	base := filepath.Base(path)
	go func() {
		for {
			select {
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				w.bump(debounce, onChange)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Str("path", path).Msg("settings watcher error")
			case <-w.done:
				return
			}
		}
	}()
	return w, nil
}

func (w *Watcher) bump(debounce time.Duration, onChange func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		w.timer = time.AfterFunc(debounce, onChange)
		return
	}
	w.timer.Reset(debounce)
}

// Close stops the watcher. A pending debounced notification may still
// fire.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
