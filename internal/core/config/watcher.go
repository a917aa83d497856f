package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the event bursts editors produce on save.
const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a configuration file whenever it changes on disk, so
// watch sessions pick up rule toggles without a restart. The callback runs
// only for files that load cleanly; a broken edit keeps the previous
// config.
type Watcher struct {
	path     string
	onReload func(*Config)
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewWatcher(path string, onReload func(*Config)) *Watcher {
	return &Watcher{
		path:     path,
		onReload: onReload,
		stop:     make(chan struct{}),
	}
}

// Start installs the watch and returns. The file's directory is watched
// rather than the file: editors replace the file on atomic saves, which
// would silently drop a watch on the file itself.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}

	w.wg.Add(1)
	go w.run(ctx, fsw)
	return nil
}

// Stop ends the watch and waits for the event loop to exit.
func (w *Watcher) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsw.Close()

	slog.Info("config watcher starting", "path", w.path)

	var pending *time.Timer
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.concerns(event) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadDebounce, w.reload)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "error", err)

		case <-w.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// concerns reports whether event is a save of the watched file.
func (w *Watcher) concerns(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		slog.Error("config reload failed", "path", w.path, "error", err)
		return
	}
	slog.Info("config reloaded", "path", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
