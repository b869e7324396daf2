// Package watch re-runs compliance checks when watched documents change.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is a debounced change notification for one document.
type Event struct {
	// Path is the changed file.
	Path string

	// Removed is set when the file was deleted or renamed away.
	Removed bool
}

// Config configures a watcher.
type Config struct {
	// Paths are the files or directories to watch.
	Paths []string

	// Match filters directory events down to relevant documents. Nil
	// accepts everything.
	Match func(path string) bool

	// DebounceDelay is how long to wait for more changes before emitting;
	// editors tend to fire several events per save.
	DebounceDelay time.Duration
}

// Watcher emits debounced document change events.
type Watcher struct {
	config  Config
	watcher *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	events chan Event
}

// NewWatcher creates a watcher over the configured paths.
func NewWatcher(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 200 * time.Millisecond
	}

	w := &Watcher{
		config:  config,
		watcher: fsw,
		pending: make(map[string]fsnotify.Op),
		events:  make(chan Event, 16),
	}

	for _, path := range config.Paths {
		if err := fsw.Add(path); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Events returns the output channel. It closes when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run pumps fsnotify events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	defer close(w.events)

	timer := time.NewTimer(w.config.DebounceDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.pendingMu.Lock()
			w.pending[ev.Name] |= ev.Op
			w.pendingMu.Unlock()
			timer.Reset(w.config.DebounceDelay)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			_ = err // transient watch errors are not fatal

		case <-timer.C:
			w.flush()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if w.config.Match == nil {
		return true
	}
	return w.config.Match(filepath.ToSlash(ev.Name))
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	pending := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range pending {
		w.events <- Event{
			Path:    path,
			Removed: op&(fsnotify.Remove|fsnotify.Rename) != 0,
		}
	}
}
