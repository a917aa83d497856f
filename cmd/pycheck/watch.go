package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/urfave/cli/v2"

	"pycheck/internal/core/app"
	"pycheck/internal/core/config"
	"pycheck/internal/shared/observability"
	"pycheck/internal/ui/report"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "watch the project and re-run the analysis on file changes",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ui",
				Usage: "interactive terminal dashboard",
			},
		},
		Action: runWatchCommand,
	}
}

func runWatchCommand(c *cli.Context) error {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if c.Bool("ui") {
		return runWatchUI(ctx, c)
	}

	// Each session owns one app built from the config as loaded at session
	// start. When the config file changes and reloads cleanly, the session
	// ends and the loop builds a fresh one.
	for {
		again, err := watchSession(ctx, c)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		if !again {
			return nil
		}
	}
}

func watchSession(ctx context.Context, c *cli.Context) (again bool, err error) {
	cfg, paths, cfgPath, err := loadConfig(c)
	if err != nil {
		return false, err
	}

	shutdown, err := observability.InitTracing(ctx, otlpEndpoint(cfg))
	if err != nil {
		return false, err
	}
	defer shutdown(context.Background())

	application, err := app.New(cfg, paths)
	if err != nil {
		return false, err
	}
	defer application.Close()

	defer startObservability(ctx, cfg, application)()

	renderer := &report.TextRenderer{Color: colorEnabled(cfg)}
	application.SetReportHandler(func(rep *app.Report) {
		recordHistory(cfg, paths, rep)
		if err := renderer.Render(os.Stdout, rep); err != nil {
			slog.Error("rendering report failed", "error", err)
		}
	})

	if _, err := application.RunScan(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return false, nil
		}
		return false, err
	}
	if err := application.StartWatcher(ctx); err != nil {
		return false, err
	}
	slog.Info("watching for changes", "root", paths.ProjectRoot, "debounce", cfg.Watch.Debounce)

	// A clean reload of the config file ends the session; reload failures
	// are logged by the config watcher and keep the current session alive.
	reloaded := make(chan struct{}, 1)
	if cfgPath != "" {
		cw := config.NewWatcher(cfgPath, func(*config.Config) {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		})
		if err := cw.Start(ctx); err != nil {
			slog.Warn("config watcher unavailable", "path", cfgPath, "error", err)
		} else {
			defer cw.Stop()
		}
	}

	select {
	case <-ctx.Done():
		return false, nil
	case <-reloaded:
		slog.Info("config changed, restarting watch session", "path", cfgPath)
		return true, nil
	}
}

// startObservability brings up the /metrics and /health endpoint when the
// config asks for it, returning the stop func. Always safe to call.
func startObservability(ctx context.Context, cfg *config.Config, application *app.App) func() {
	if !cfg.Observability.Enabled {
		return func() {}
	}

	server := observability.NewServer(cfg.Observability.Addr, app.NewHealthService(application))
	if err := server.Start(ctx); err != nil {
		slog.Warn("observability server unavailable", "addr", cfg.Observability.Addr, "error", err)
		return func() {}
	}
	return func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
		defer stop()
		if err := server.Stop(stopCtx); err != nil {
			slog.Warn("observability server shutdown failed", "error", err)
		}
	}
}
