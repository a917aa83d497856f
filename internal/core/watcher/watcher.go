package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"pycheck/internal/shared/observability"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Event ops that invalidate analysis results for a path.
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher delivers debounced batches of changed Python file paths. Events
// for excluded directories and files are dropped before they reach the
// callback; directories created under a watched root are picked up
// recursively.
type Watcher struct {
	fs           *fsnotify.Watcher
	debounce     time.Duration
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	notify       func([]string)
	notifyMu     sync.Mutex

	dirty      map[string]struct{}
	mu         sync.Mutex
	flushTimer *time.Timer
}

func NewWatcher(debounce time.Duration, excludeDirs, excludeFiles []string, notify func([]string)) (*Watcher, error) {
	if notify == nil {
		return nil, os.ErrInvalid
	}

	dirGlobs, err := compileGlobs(excludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(excludeFiles)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fs:           fsw,
		debounce:     debounce,
		excludeDirs:  dirGlobs,
		excludeFiles: fileGlobs,
		notify:       notify,
		dirty:        make(map[string]struct{}),
	}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Watch installs recursive watches on each root and starts the event loop.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.flushTimer != nil {
		w.flushTimer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case !d.IsDir():
			return nil
		case w.shouldExcludeDir(path):
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.adoptDirectory(event.Name)
			return
		}
	}

	if w.shouldExcludeFile(event.Name) {
		return
	}
	if event.Op&changeOps != 0 {
		w.scheduleChange(event.Name)
	}
}

// adoptDirectory extends the watch to a directory created after Watch and
// schedules any files it already contains, since those produce no events of
// their own.
func (w *Watcher) adoptDirectory(path string) {
	if w.shouldExcludeDir(path) {
		return
	}
	if err := w.watchRecursive(path); err != nil {
		slog.Warn("failed to watch created directory", "path", path, "error", err)
		return
	}
	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil || d == nil || d.IsDir() {
			return nil
		}
		if !w.shouldExcludeFile(p) {
			w.scheduleChange(p)
		}
		return nil
	})
}

func (w *Watcher) scheduleChange(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.dirty[path] = struct{}{}

	if w.flushTimer == nil {
		w.flushTimer = time.AfterFunc(w.debounce, w.flushChanges)
		return
	}
	w.flushTimer.Reset(w.debounce)
}

// flushChanges hands the dirty batch to the callback in path order.
func (w *Watcher) flushChanges() {
	w.mu.Lock()
	batch := w.dirty
	w.dirty = make(map[string]struct{}, len(batch))
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	paths := make([]string, 0, len(batch))
	for path := range batch {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()
	w.notify(paths)
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	return matchesAny(w.excludeDirs, filepath.Base(path))
}

// Only Python sources are interesting; everything else is dropped up front.
func (w *Watcher) shouldExcludeFile(path string) bool {
	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), ".py") {
		return true
	}
	return matchesAny(w.excludeFiles, base)
}

func matchesAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
