package app

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"pycheck/internal/core/config"
	"pycheck/internal/engine/graph"
	"pycheck/internal/engine/parser"
	"pycheck/internal/engine/resolver"
	"pycheck/internal/engine/rules"
	"pycheck/internal/shared/util"

	"github.com/gobwas/glob"
)

// Report is the outcome of one full analysis pass over the project.
type Report struct {
	RunID       string
	Root        string
	StartedAt   time.Time
	Duration    time.Duration
	Files       int
	Modules     int
	Edges       int
	Cyclic      int
	Diagnostics []rules.Diagnostic
	Warnings    []string
}

// Counts returns the number of diagnostics per severity.
func (r *Report) Counts() (errors, warnings int) {
	for _, d := range r.Diagnostics {
		if d.Severity == rules.SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

type cachedParse struct {
	file    *parser.File
	size    int64
	modTime time.Time
}

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths

	parser   *parser.Parser
	resolver *resolver.Resolver
	cache    *util.LRUCache[string, cachedParse]
	guard    *util.MemoryGuard
	limiter  *util.Limiter

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	reportMu     sync.RWMutex
	onReport     func(*Report)
	lastReport   atomic.Pointer[Report]
	lastAnalysis atomic.Pointer[analysis]

	activeWatcher interface{ Close() error }
}

func New(cfg *config.Config, paths config.ResolvedPaths) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	excludeDirs, err := compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}

	cache := util.NewLRUCache[string, cachedParse](cfg.Parser.CacheCapacity)

	return &App{
		Config:       cfg,
		Paths:        paths,
		parser:       parser.NewParser(),
		resolver:     resolver.New(paths.PackageRoot),
		cache:        cache,
		guard:        util.NewMemoryGuard(cfg.Parser.MemoryLimitMB, 0, cache.Shed),
		limiter:      util.NewLimiter(cfg.Parser.RatePerSecond, cfg.Parser.RateBurst),
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
	}, nil
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// buildRegistry assembles the rule set for one run. The cyclic-import rule
// is bound to the run's query service; the per-file rules are stateless.
func (a *App) buildRegistry(service *rules.CycleQueryService) *rules.Registry {
	enabled := a.Config.EnabledRules()
	var active []rules.Rule
	if enabled[rules.NameCyclicImport] && service != nil {
		active = append(active, rules.NewCycleRule(service))
	}
	if enabled[rules.NameEnvironAssignment] {
		active = append(active, rules.NewEnvironAssignmentRule())
	}
	if enabled[rules.NameErrorInsteadOfException] {
		active = append(active, rules.NewErrorInsteadOfExceptionRule())
	}
	if enabled[rules.NameReturnInInit] {
		active = append(active, rules.NewReturnInInitRule())
	}
	return rules.NewRegistry(active...)
}

// SetReportHandler registers a callback invoked after every completed run,
// including rescans in watch mode.
func (a *App) SetReportHandler(handler func(*Report)) {
	a.reportMu.Lock()
	defer a.reportMu.Unlock()
	a.onReport = handler
}

func (a *App) notify(report *Report) {
	a.lastReport.Store(report)
	a.reportMu.RLock()
	handler := a.onReport
	a.reportMu.RUnlock()
	if handler != nil {
		handler(report)
	}
}

// LastReport returns the most recent completed run, or nil before the
// first one finishes.
func (a *App) LastReport() *Report {
	return a.lastReport.Load()
}

// GraphSnapshot returns the import graph and cycle cache of the most
// recent run, for renderers that draw the graph itself. Both are nil
// before the first run completes.
func (a *App) GraphSnapshot() (*graph.ImportGraph, *graph.CycleCache) {
	res := a.lastAnalysis.Load()
	if res == nil {
		return nil, nil
	}
	return res.graph, res.cache
}

func (a *App) Close() error {
	if a.activeWatcher != nil {
		return a.activeWatcher.Close()
	}
	return nil
}

func fileStamp(path string) (int64, time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, time.Time{}, false
	}
	return info.Size(), info.ModTime(), true
}
