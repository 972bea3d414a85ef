package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultReloadDebounce = 250 * time.Millisecond

// Watcher reloads the config when its file changes on disk. Editors often
// produce several write/rename events per save, so reloads are debounced.
type Watcher struct {
	watcher *fsnotify.Watcher
	cfg     *Config

	// onReload is called after each successful reload. Used by the CLI to
	// log, and by tests to observe reloads without sleeping on real config
	// consumers.
	onReload func()

	debounce time.Duration

	debounceTimer   *time.Timer
	debounceTimerMu sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the config's file. Returns nil if the
// file's directory cannot be watched; hot reload is a convenience, not a
// requirement.
func NewWatcher(cfg *Config, onReload func()) *Watcher {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Printf("[config] failed to create watcher: %v\n", err)
		return nil
	}

	// Watch the directory, not the file: saves that replace the file would
	// drop a direct file watch.
	if err := w.Add(filepath.Dir(cfg.Path())); err != nil {
		fmt.Printf("[config] failed to watch %s: %v\n", filepath.Dir(cfg.Path()), err)
		w.Close()
		return nil
	}

	return &Watcher{
		watcher:  w,
		cfg:      cfg,
		onReload: onReload,
		debounce: defaultReloadDebounce,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the event loop goroutine.
func (w *Watcher) Start() {
	go w.eventLoop()
}

// Stop closes the watcher and cancels any pending reload. Safe to call
// multiple times.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()

		w.debounceTimerMu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.debounceTimerMu.Unlock()
	})
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			fmt.Printf("[config] watch error: %v\n", err)
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.cfg.Path()) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	w.resetDebounce()
}

func (w *Watcher) resetDebounce() {
	w.debounceTimerMu.Lock()
	defer w.debounceTimerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Reset(w.debounce)
		return
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	if err := w.cfg.Reload(); err != nil {
		fmt.Printf("[config] reload failed: %v\n", err)
		return
	}
	fmt.Printf("[config] reloaded %s\n", w.cfg.Path())
	if w.onReload != nil {
		w.onReload()
	}
}
