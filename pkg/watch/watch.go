// Package watch signals when a single file changes on disk.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors one file. It watches the parent directory so that
// editors replacing the file by rename are still observed.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	events    chan struct{}
	errs      chan error
	stop      chan struct{}
	debounce  time.Duration
	timer     *time.Timer
	mu        sync.Mutex
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New starts watching path. debounce <= 0 selects DefaultDebounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		path:      abs,
		events:    make(chan struct{}, 1),
		errs:      make(chan error, 1),
		stop:      make(chan struct{}),
		debounce:  debounce,
		done:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Events delivers one signal per debounced burst of changes to the file.
// The channel is closed after Close.
func (w *Watcher) Events() <-chan struct{} { return w.events }

// Errors delivers watcher errors; it is never closed.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

func (w *Watcher) run() {
	defer func() {
		w.mu.Lock()
		w.closed = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		close(w.events)
		close(w.done)
	}()

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			w.schedule()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		if w.closed {
			return
		}
		select {
		case w.events <- struct{}{}:
		default: // a signal is already pending
		}
	})
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.stop)
		<-w.done
		w.closeErr = w.fsWatcher.Close()
	})
	return w.closeErr
}
