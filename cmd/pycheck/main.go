package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"pycheck/internal/core/config"
	"pycheck/internal/shared/version"
)

const programName = "pycheck"

// Exit codes: 0 clean, 1 findings reported, 2 configuration or internal
// failure.

func main() {
	app := &cli.App{
		Name:    programName,
		Usage:   "static analysis for Python projects",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a pycheck.toml or pycheck.yaml",
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "project root, overriding marker detection",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			setupLogging(os.Stderr, c.Bool("verbose"))
			return nil
		},
		Commands: []*cli.Command{
			scanCommand(),
			watchCommand(),
			trendsCommand(),
			rulesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func setupLogging(w *os.File, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig resolves the effective configuration for a command: explicit
// --config path or discovery from the working directory, then environment
// overrides, then path resolution. The returned string is the config file
// the settings came from, empty when running on defaults.
func loadConfig(c *cli.Context) (*config.Config, config.ResolvedPaths, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, config.ResolvedPaths{}, "", err
	}

	var (
		cfg     *config.Config
		cfgPath string
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
		cfgPath = path
	} else {
		cfg, cfgPath, err = config.Discover(cwd)
	}
	if err != nil {
		return nil, config.ResolvedPaths{}, "", err
	}
	if cfgPath != "" {
		slog.Debug("loaded config", "path", cfgPath)
	}

	config.ApplyEnvOverrides(cfg)

	if root := c.String("root"); root != "" {
		cfg.Paths.ProjectRoot = root
	}

	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return nil, config.ResolvedPaths{}, "", err
	}
	return cfg, paths, cfgPath, nil
}

func colorEnabled(cfg *config.Config) bool {
	if cfg.Output.Color != nil {
		return *cfg.Output.Color
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// otlpEndpoint returns the trace collector endpoint, or "" when the
// observability block is off so tracing stays a no-op.
func otlpEndpoint(cfg *config.Config) string {
	if !cfg.Observability.Enabled {
		return ""
	}
	return cfg.Observability.OTLPEndpoint
}
