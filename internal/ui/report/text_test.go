package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pycheck/internal/engine/parser"
	"pycheck/internal/engine/rules"
)

func TestTextRenderer(t *testing.T) {
	root := t.TempDir()
	source := "import os\nos.environ = {}\nx = 1\n"
	if err := os.WriteFile(filepath.Join(root, "app.py"), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	report := sampleReport(root)
	report.Diagnostics = report.Diagnostics[:1]

	var buf bytes.Buffer
	if err := (&TextRenderer{}).Render(&buf, report); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Warning [PC002 environ-assignment] at app.py:2:1") {
		t.Errorf("missing headline, got:\n%s", out)
	}
	if !strings.Contains(out, "  2  | os.environ = {}") {
		t.Errorf("missing source line with gutter, got:\n%s", out)
	}
	if !strings.Contains(out, "\n       ^\n") {
		t.Errorf("missing caret marker, got:\n%s", out)
	}
	if !strings.Contains(out, "assignment replaces os.environ") {
		t.Errorf("missing message, got:\n%s", out)
	}
	if !strings.Contains(out, "checked 2 files (2 modules, 1 import): 1 warning") {
		t.Errorf("missing summary, got:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("color disabled but output contains ANSI escapes")
	}
}

func TestTextRenderer_NoIssues(t *testing.T) {
	report := sampleReport(t.TempDir())
	report.Diagnostics = nil

	var buf bytes.Buffer
	if err := (&TextRenderer{}).Render(&buf, report); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	want := "checked 2 files (2 modules, 1 import): no issues found\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTextRenderer_Color(t *testing.T) {
	report := sampleReport(t.TempDir())

	var buf bytes.Buffer
	if err := (&TextRenderer{Color: true}).Render(&buf, report); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "\x1b[1;33mWarning\x1b[0m") {
		t.Errorf("missing yellow warning label, got:\n%s", out)
	}
	if !strings.Contains(out, "\x1b[1;31mError\x1b[0m") {
		t.Errorf("missing red error label, got:\n%s", out)
	}
}

func TestTextRenderer_MissingSourceFallsBack(t *testing.T) {
	root := t.TempDir()
	report := sampleReport(root)
	report.Diagnostics = []rules.Diagnostic{
		{
			Rule:     "PC001",
			Name:     rules.NameCyclicImport,
			Severity: rules.SeverityWarning,
			Message:  "pkg.a -> pkg.b",
			Location: parser.Location{File: filepath.Join(root, "gone.py"), Line: 4, Column: 1},
		},
	}

	var buf bytes.Buffer
	if err := (&TextRenderer{}).Render(&buf, report); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Warning [PC001 cyclic-import] at gone.py:4:1") {
		t.Errorf("missing headline, got:\n%s", out)
	}
	if !strings.Contains(out, "  pkg.a -> pkg.b") {
		t.Errorf("missing inline message fallback, got:\n%s", out)
	}
	if strings.Contains(out, "|") {
		t.Errorf("unexpected gutter for unreadable source, got:\n%s", out)
	}
}

func TestTextRenderer_ScanWarnings(t *testing.T) {
	report := sampleReport(t.TempDir())
	report.Diagnostics = nil
	report.Warnings = []string{"read /tmp/x.py: permission denied"}

	var buf bytes.Buffer
	if err := (&TextRenderer{}).Render(&buf, report); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "warning: read /tmp/x.py: permission denied") {
		t.Errorf("missing scan warning, got:\n%s", out)
	}
	if !strings.Contains(out, "no issues found") {
		t.Errorf("scan warnings must not count as findings, got:\n%s", out)
	}
}
