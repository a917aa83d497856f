package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pycheck/internal/core/app"
	"pycheck/internal/engine/parser"
	"pycheck/internal/engine/rules"
)

func sampleReport(root string) *app.Report {
	return &app.Report{
		RunID:     "run-1",
		Root:      root,
		StartedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Files:     2,
		Modules:   2,
		Edges:     1,
		Cyclic:    0,
		Diagnostics: []rules.Diagnostic{
			{
				Rule:     "PC002",
				Name:     rules.NameEnvironAssignment,
				Severity: rules.SeverityWarning,
				Message:  "assignment replaces os.environ instead of updating it",
				Location: parser.Location{File: filepath.Join(root, "app.py"), Line: 2, Column: 1},
			},
			{
				Rule:     "PC004",
				Name:     rules.NameReturnInInit,
				Severity: rules.SeverityError,
				Message:  "__init__ returns a value",
				Location: parser.Location{File: filepath.Join(root, "model.py"), Line: 3, Column: 9},
			},
		},
	}
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"", "text", "json", "sarif", "TEXT"} {
		if _, err := ForFormat(Options{Format: format}); err != nil {
			t.Errorf("ForFormat(%q) returned error: %v", format, err)
		}
	}

	if _, err := ForFormat(Options{Format: "dot"}); err == nil {
		t.Error("expected error for dot format without a graph")
	}
	if _, err := ForFormat(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWrite_ToFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "out", "report.json")

	if err := Write(sampleReport(root), Options{Format: "json"}, path); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report file: %v", err)
	}
	if !strings.Contains(string(data), `"run_id": "run-1"`) {
		t.Errorf("report file missing run id, got:\n%s", data)
	}
}
