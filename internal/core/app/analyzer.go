package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"pycheck/internal/core/errors"
	"pycheck/internal/engine/graph"
	"pycheck/internal/engine/parser"
	"pycheck/internal/engine/resolver"
	"pycheck/internal/engine/rules"
	"pycheck/internal/shared/observability"
)

// parseAll reads and parses every path on a worker pool. Unreadable or
// unparsable files become warnings, not errors: one broken file must not
// sink the run. The returned files are sorted by path.
func (a *App) parseAll(ctx context.Context, paths []string) ([]*parser.File, []string, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.parseAll")
	defer span.End()

	type result struct {
		file *parser.File
		warn string
	}
	jobs := make(chan string)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < a.workerCount(len(paths)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				file, warn := a.parseOne(ctx, path)
				results <- result{file: file, warn: warn}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	files := make([]*parser.File, 0, len(paths))
	var warnings []string
	processed := 0
	for res := range results {
		processed++
		if res.warn != "" {
			warnings = append(warnings, res.warn)
		}
		if res.file != nil {
			files = append(files, res.file)
		}
		if processed%100 == 0 {
			if shed := a.guard.Relieve(); shed > 0 {
				observability.ParseCacheShedTotal.Add(float64(shed))
				slog.Debug("shed parsed files under memory pressure", "entries", shed)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, warnings, nil
}

func (a *App) parseOne(ctx context.Context, path string) (*parser.File, string) {
	if err := a.limiter.Wait(ctx, 1); err != nil {
		return nil, ""
	}

	size, modTime, statOK := fileStamp(path)
	if statOK {
		if entry, hit := a.cache.Get(path); hit && entry.size == size && entry.modTime.Equal(modTime) {
			observability.ParseCacheHitsTotal.Inc()
			entry.file.Module = a.resolver.ModuleName(path)
			return entry.file, ""
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Sprintf("read %s: %v", path, err)
	}

	start := time.Now()
	file, err := a.parser.ParseFile(path, content)
	observability.ParsingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.FilesParsedTotal.WithLabelValues("error").Inc()
		return nil, fmt.Sprintf("parse %s: %v", path, err)
	}
	observability.FilesParsedTotal.WithLabelValues("ok").Inc()

	file.Module = a.resolver.ModuleName(path)
	if statOK {
		a.cache.Put(path, cachedParse{file: file, size: size, modTime: modTime})
	}
	return file, ""
}

type analysis struct {
	graph       *graph.ImportGraph
	cache       *graph.CycleCache
	diagnostics []rules.Diagnostic
}

// analyze builds the snapshot import graph from the parsed files and runs
// every enabled rule over them.
func (a *App) analyze(ctx context.Context, files []*parser.File) (*analysis, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.analyze")
	defer span.End()

	buildStart := time.Now()
	g := graph.Build(a.importMap(files))
	observability.AnalysisDuration.WithLabelValues("graph_build").Observe(time.Since(buildStart).Seconds())
	observability.GraphModules.Set(float64(g.NumModules()))
	observability.GraphEdges.Set(float64(g.NumEdges()))

	cycleCache := graph.NewCycleCache()
	service := rules.NewCycleQueryService(g, cycleCache)
	registry := a.buildRegistry(service)

	checkStart := time.Now()
	diags, err := a.runChecks(ctx, registry, files)
	observability.AnalysisDuration.WithLabelValues("checks").Observe(time.Since(checkStart).Seconds())
	if err != nil {
		return nil, err
	}

	rules.Sort(diags)
	return &analysis{graph: g, cache: cycleCache, diagnostics: diags}, nil
}

// importMap resolves every parsed file's imports to project modules. Files
// outside the package root have no module name and contribute nothing.
// Modules without project imports still get an entry so the graph knows
// them.
func (a *App) importMap(files []*parser.File) map[string][]graph.RawImport {
	known := make(map[string]bool, len(files))
	for _, f := range files {
		if f.Module != "" {
			known[f.Module] = true
		}
	}
	isKnown := func(name string) bool { return known[name] }

	imports := make(map[string][]graph.RawImport, len(known))
	for _, f := range files {
		if f.Module == "" {
			continue
		}
		if _, ok := imports[f.Module]; !ok {
			imports[f.Module] = nil
		}
		isInit := resolver.IsPackageInit(f.Path)
		for _, imp := range f.Imports {
			for _, target := range a.resolver.ImportTargets(imp, f.Module, isInit, isKnown) {
				if !known[target] {
					continue
				}
				imports[f.Module] = append(imports[f.Module], graph.RawImport{
					Module:   target,
					Location: imp.Location,
				})
			}
		}
	}
	return imports
}

// runChecks fans the parsed files out over the worker pool and runs every
// registered rule against each one. The first rule error aborts the run;
// remaining workers drain without submitting further work.
func (a *App) runChecks(ctx context.Context, registry *rules.Registry, files []*parser.File) ([]rules.Diagnostic, error) {
	type result struct {
		diags []rules.Diagnostic
		err   error
	}
	jobs := make(chan *parser.File)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < a.workerCount(len(files)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				diags, err := checkFile(registry, file)
				results <- result{diags: diags, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, file := range files {
			select {
			case jobs <- file:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []rules.Diagnostic
	var firstErr error
	for res := range results {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		all = append(all, res.diags...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return all, nil
}

func checkFile(registry *rules.Registry, file *parser.File) ([]rules.Diagnostic, error) {
	var out []rules.Diagnostic
	for _, rule := range registry.Rules() {
		diags, err := rule.Check(file)
		if err != nil {
			err = errors.AddContext(err, errors.CtxRule, rule.Info().ID)
			return nil, errors.AddContext(err, errors.CtxPath, file.Path)
		}
		out = append(out, diags...)
	}
	return out, nil
}

func (a *App) workerCount(jobs int) int {
	workers := a.Config.Parser.Workers
	if workers > jobs {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
