package app

import (
	"context"
	"time"

	"pycheck/internal/core/errors"
	"pycheck/internal/shared/observability"

	"github.com/google/uuid"
)

// RunScan performs one full analysis pass: walk the scan paths, parse every
// Python file, build the import graph and run the enabled rules. The
// returned report carries findings and per-file warnings; an error means
// the run itself failed and its results must not be trusted.
func (a *App) RunScan(ctx context.Context) (*Report, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.RunScan")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()

	scanStart := time.Now()
	paths, err := a.ScanFiles()
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "scan")
	}
	observability.AnalysisDuration.WithLabelValues("scan").Observe(time.Since(scanStart).Seconds())

	files, warnings, err := a.parseAll(ctx, paths)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "parse")
	}

	res, err := a.analyze(ctx, files)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "analyze")
	}
	a.lastAnalysis.Store(res)

	report := &Report{
		RunID:       uuid.NewString(),
		Root:        a.Paths.ProjectRoot,
		StartedAt:   started.UTC(),
		Duration:    time.Since(started),
		Files:       len(files),
		Modules:     res.graph.NumModules(),
		Edges:       res.graph.NumEdges(),
		Cyclic:      res.cache.CyclicModules(),
		Diagnostics: res.diagnostics,
		Warnings:    warnings,
	}

	for _, d := range report.Diagnostics {
		observability.DiagnosticsTotal.WithLabelValues(d.Rule).Inc()
	}
	observability.CycleCacheEntries.Set(float64(res.cache.Len()))
	observability.CyclicModules.Set(float64(report.Cyclic))

	a.notify(report)
	return report, nil
}
