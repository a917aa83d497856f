package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"pycheck/internal/data/history"
	"pycheck/internal/shared/util"
	"pycheck/internal/ui/report"
)

func trendsCommand() *cli.Command {
	return &cli.Command{
		Name:  "trends",
		Usage: "report how recorded runs evolved over time",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "since",
				Usage: "include runs at or after this timestamp (RFC3339 or YYYY-MM-DD)",
			},
			&cli.DurationFlag{
				Name:  "window",
				Value: 24 * time.Hour,
				Usage: "moving-average window for the cyclic module count",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "maximum number of runs to include, oldest first (0 = all)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "output format: text or json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the trend report to this file instead of stdout",
			},
		},
		Action: runTrendsCommand,
	}
}

func runTrendsCommand(c *cli.Context) error {
	cfg, paths, _, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	var since time.Time
	if s := c.String("since"); s != "" {
		since, err = parseSince(s)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
	}

	store, err := history.Open(paths.HistoryPath, paths.LockPath, cfg.History.BusyTimeout)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer store.Close()

	runs, err := store.LoadRuns(since, c.Int("limit"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	trendReport, err := history.BuildTrendReport(runs, c.Duration("window"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	var data []byte
	switch c.String("format") {
	case "", "text":
		data, err = report.RenderTrendsText(trendReport)
	case "json":
		data, err = report.RenderTrendsJSON(trendReport)
	default:
		return cli.Exit(fmt.Sprintf("unknown trends format %q; use text or json", c.String("format")), 2)
	}
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	if out := c.String("output"); out != "" {
		if err := util.WriteFileWithDirs(out, data, 0o644); err != nil {
			return cli.Exit(err.Error(), 2)
		}
		return nil
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	return nil
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q; use RFC3339 or YYYY-MM-DD", s)
}
