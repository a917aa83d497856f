package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v2"

	"pycheck/internal/core/app"
	"pycheck/internal/core/config"
	"pycheck/internal/data/history"
	"pycheck/internal/shared/observability"
	"pycheck/internal/ui/report"
)

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "run one analysis pass over the project and report findings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: text, json, sarif or dot",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the report to this file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable ANSI colors in text output",
			},
		},
		Action: runScanCommand,
	}
}

func runScanCommand(c *cli.Context) error {
	cfg, paths, _, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if format := c.String("format"); format != "" {
		cfg.Output.Format = format
	}
	if out := c.String("output"); out != "" {
		cfg.Output.File = out
	}
	if c.Bool("no-color") {
		off := false
		cfg.Output.Color = &off
	}

	shutdown, err := observability.InitTracing(c.Context, otlpEndpoint(cfg))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer shutdown(context.Background())

	application, err := app.New(cfg, paths)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer application.Close()

	rep, err := application.RunScan(c.Context)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	recordHistory(cfg, paths, rep)

	g, cycles := application.GraphSnapshot()
	opts := report.Options{
		Format: cfg.Output.Format,
		Color:  colorEnabled(cfg),
		Graph:  g,
		Cycles: cycles,
	}
	if err := report.Write(rep, opts, cfg.Output.File); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	if len(rep.Diagnostics) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// recordHistory persists one run when history is on. Failures degrade to a
// warning; a broken history database must not fail the analysis itself.
func recordHistory(cfg *config.Config, paths config.ResolvedPaths, rep *app.Report) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.Open(paths.HistoryPath, paths.LockPath, cfg.History.BusyTimeout)
	if err != nil {
		slog.Warn("history unavailable for this run", "path", paths.HistoryPath, "error", err)
		return
	}
	defer store.Close()

	errorCount, warningCount := rep.Counts()
	var counts map[string]int
	if len(rep.Diagnostics) > 0 {
		counts = make(map[string]int, 4)
		for _, diag := range rep.Diagnostics {
			counts[diag.Rule]++
		}
	}

	run := history.Run{
		ID:         rep.RunID,
		Timestamp:  rep.StartedAt,
		Root:       rep.Root,
		Files:      rep.Files,
		Modules:    rep.Modules,
		Edges:      rep.Edges,
		Cyclic:     rep.Cyclic,
		Errors:     errorCount,
		Warnings:   warningCount,
		Duration:   rep.Duration,
		RuleCounts: counts,
	}
	if err := store.RecordRun(run); err != nil {
		slog.Warn("recording run in history failed", "run", rep.RunID, "error", err)
	}
}
