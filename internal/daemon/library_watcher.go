package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/storyposter/internal/library"
	"git.home.luguber.info/inful/storyposter/internal/metrics"
	"git.home.luguber.info/inful/storyposter/internal/state"
)

// LibraryWatcher monitors the image directory and keeps the pending-image
// gauge fresh between posting runs. It is purely observational: selection
// always rescans the directory itself.
type LibraryWatcher struct {
	dir          string
	recorder     metrics.Recorder
	store        *state.Store
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	debounceTime time.Duration
}

// NewLibraryWatcher creates a watcher for the image directory.
func NewLibraryWatcher(dir string, recorder metrics.Recorder, store *state.Store) *LibraryWatcher {
	return &LibraryWatcher{
		dir:          dir,
		recorder:     recorder,
		store:        store,
		stopChan:     make(chan struct{}),
		debounceTime: 2 * time.Second, // collapse bursts from bulk copies
	}
}

// Start begins monitoring. It refreshes the gauges once immediately so
// they are populated before the first scheduled run.
func (lw *LibraryWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(lw.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch image directory %s: %w", lw.dir, err)
	}
	lw.watcher = watcher

	lw.refresh()
	slog.Info("Watching image directory", "dir", lw.dir)

	go lw.watchLoop(ctx)
	return nil
}

// Stop stops the watcher.
func (lw *LibraryWatcher) Stop() {
	if lw.watcher == nil {
		return
	}
	close(lw.stopChan)
	_ = lw.watcher.Close()
}

func (lw *LibraryWatcher) watchLoop(ctx context.Context) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-lw.stopChan:
			return
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("Image directory changed", "event", event.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(lw.debounceTime, lw.refresh)
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Image directory watcher error", "error", err)
		}
	}
}

// refresh rescans the library and updates the gauges.
func (lw *LibraryWatcher) refresh() {
	entries, err := library.Scan(lw.dir)
	if err != nil {
		slog.Warn("Image directory scan failed", "dir", lw.dir, "error", err)
		lw.recorder.SetPendingImages(0)
		return
	}
	lastPosted := lw.store.Load()
	pending := len(entries) - (lastPosted + 1)
	if pending < 0 {
		pending = 0
	}
	lw.recorder.SetPendingImages(pending)
	lw.recorder.SetLastPostedIndex(lastPosted)
	slog.Info("Image library refreshed", "images", len(entries), "pending", pending)
}
