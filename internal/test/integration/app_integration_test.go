package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pycheck/internal/core/app"
	"pycheck/internal/core/config"
	"pycheck/internal/data/history"
	"pycheck/internal/ui/report"
)

func writeProjectFiles(t *testing.T, root string) {
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"),
		[]byte("[project]\nname = \"demo\"\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "demo"), 0o755))

	files := map[string]string{
		"src/demo/__init__.py": "",
		"src/demo/orders.py":   "from demo import billing\n\n\ndef place(order):\n    return billing.charge(order)\n",
		"src/demo/billing.py":  "import demo.orders\n\n\ndef charge(order):\n    return demo.orders.place(order)\n",
		"src/demo/util.py":     "import os\n\nos.environ = {}\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func writeConfigFile(t *testing.T, root, content string) string {
	path := filepath.Join(root, "pycheck.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFullPipeline(t *testing.T) {
	root := t.TempDir()
	writeProjectFiles(t, root)
	cfgPath := writeConfigFile(t, root, `
package_root = "src"
scan_paths = ["src"]

[paths]
project_root = "."
`)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	paths, err := config.ResolvePaths(cfg, root)
	require.NoError(t, err)
	assert.Equal(t, root, paths.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "src"), paths.PackageRoot)

	application, err := app.New(cfg, paths)
	require.NoError(t, err)
	defer application.Close()

	rep, err := application.RunScan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Files)
	assert.Equal(t, 4, rep.Modules)
	assert.Equal(t, 2, rep.Edges)
	assert.Equal(t, 2, rep.Cyclic)

	ids := make([]string, 0, len(rep.Diagnostics))
	for _, diag := range rep.Diagnostics {
		ids = append(ids, diag.Rule)
	}
	assert.Equal(t, []string{"PC001", "PC001", "PC002"}, ids)

	// The machine-readable report carries the same findings with paths
	// relative to the project root.
	var buf bytes.Buffer
	require.NoError(t, (&report.JSONRenderer{}).Render(&buf, rep))

	var doc struct {
		Summary struct {
			CyclicModules int `json:"cyclic_modules"`
			Errors        int `json:"errors"`
			Warnings      int `json:"warnings"`
		} `json:"summary"`
		Diagnostics []struct {
			Rule string `json:"rule"`
			File string `json:"file"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 2, doc.Summary.CyclicModules)
	assert.Equal(t, 0, doc.Summary.Errors)
	assert.Equal(t, 3, doc.Summary.Warnings)
	require.Len(t, doc.Diagnostics, 3)
	assert.Equal(t, "src/demo/billing.py", doc.Diagnostics[0].File)

	// Runs persisted to history feed the trend report.
	store, err := history.Open(paths.HistoryPath, paths.LockPath, time.Second)
	require.NoError(t, err)
	defer store.Close()

	errorCount, warningCount := rep.Counts()
	require.NoError(t, store.RecordRun(history.Run{
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
		RuleCounts: map[string]int{"PC001": 2, "PC002": 1},
	}))

	runs, err := store.LoadRuns(time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	trend, err := history.BuildTrendReport(runs, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, trend.RunCount)
	assert.Equal(t, 2, trend.Points[0].Cyclic)
}

func TestFullPipeline_DisabledRule(t *testing.T) {
	root := t.TempDir()
	writeProjectFiles(t, root)
	cfgPath := writeConfigFile(t, root, `
package_root = "src"
scan_paths = ["src"]

[paths]
project_root = "."

[rules]
disable = ["cyclic-import"]
`)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	paths, err := config.ResolvePaths(cfg, root)
	require.NoError(t, err)

	application, err := app.New(cfg, paths)
	require.NoError(t, err)
	defer application.Close()

	rep, err := application.RunScan(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, "PC002", rep.Diagnostics[0].Rule)
	assert.Equal(t, 0, rep.Cyclic)
}
