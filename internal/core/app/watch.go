package app

import (
	"context"
	"log/slog"

	"pycheck/internal/core/watcher"
	"pycheck/internal/shared/observability"
)

// StartWatcher begins watching the scan roots and re-runs the analysis
// after each debounced batch of Python file changes. Reports reach the
// registered report handler.
func (a *App) StartWatcher(ctx context.Context) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) { a.handleChanges(ctx, paths) },
	)
	if err != nil {
		return err
	}
	a.activeWatcher = w
	return w.Watch(a.scanRoots())
}

func (a *App) handleChanges(ctx context.Context, paths []string) {
	for _, path := range paths {
		a.cache.Evict(path)
	}

	observability.RescanTotal.Inc()
	slog.Info("rescanning after file changes", "changed", len(paths))

	if _, err := a.RunScan(ctx); err != nil {
		slog.Error("rescan failed", "error", err)
	}
}
