// Package watcher watches the catalog data directory and triggers a reload
// when catalog files change.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 2 * time.Second

// Watcher watches a directory for JSON catalog changes and invokes a reload
// callback. Events are debounced as a whole: a catalog refresh touches
// several files, and one rebuild covers them all.
type Watcher struct {
	dir      string
	onReload func()
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	watcher *fsnotify.Watcher
	started bool
	done    chan struct{}
	stop    sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher over dir. onReload is called, debounced,
// after any .json file under dir changes.
func NewWatcher(dir string, onReload func(), opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		onReload: onReload,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = fsw
	w.started = true
	w.mu.Unlock()

	if w.logger != nil {
		w.logger.Debug("catalog watcher starting", zap.String("dir", w.dir))
	}

	go func() {
		defer fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.done:
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !isCatalogEvent(event) {
					continue
				}
				if w.logger != nil {
					w.logger.Debug("catalog file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				}
				w.scheduleReload()
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				if w.logger != nil {
					w.logger.Warn("catalog watcher error", zap.Error(err))
				}
			}
		}
	}()
	return nil
}

func isCatalogEvent(event fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onReload)
}

// Stop stops the watcher and cancels any pending reload.
func (w *Watcher) Stop() {
	w.stop.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}
