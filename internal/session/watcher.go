package session

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadEvent is the result of one reload attempt. On failure Session is nil
// and the previous snapshot in the Holder is left untouched.
type ReloadEvent struct {
	Session *Session
	Err     error
}

// Watcher rebuilds the session whenever the document file changes and
// publishes the result through a Holder. Writes are debounced because
// editors typically emit several events per save.
type Watcher struct {
	path     string
	holder   *Holder
	debounce time.Duration

	fsw    *fsnotify.Watcher
	events chan ReloadEvent
	done   chan struct{}

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewWatcher creates a watcher for the given document path. The enclosing
// directory is watched, not the file itself: editors that save via
// rename-and-replace would otherwise drop the watch.
func NewWatcher(path string, holder *Holder, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{
		path:     path,
		holder:   holder,
		debounce: debounce,
		fsw:      fsw,
		events:   make(chan ReloadEvent, 16),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching and returns the reload event channel. Subsequent
// calls return the same channel.
func (w *Watcher) Start() <-chan ReloadEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		w.started = true
		go w.loop()
	}
	return w.events
}

func (w *Watcher) loop() {
	defer close(w.events)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Restart the debounce window on every relevant event.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.emit(ReloadEvent{Err: err})
		}
	}
}

// reload rebuilds the session and swaps it into the holder on success. A
// failed build keeps the previous snapshot: a broken save never degrades
// running consumers.
func (w *Watcher) reload() {
	s, err := Load(w.path)
	if err != nil {
		w.emit(ReloadEvent{Err: err})
		return
	}
	if w.holder != nil {
		w.holder.Swap(s)
	}
	w.emit(ReloadEvent{Session: s})
}

func (w *Watcher) emit(ev ReloadEvent) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)
	return w.fsw.Close()
}
