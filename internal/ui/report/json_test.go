package report

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONRenderer(t *testing.T) {
	root := t.TempDir()
	report := sampleReport(root)
	report.Warnings = []string{"parse broken.py: unexpected indent"}

	var buf bytes.Buffer
	if err := (&JSONRenderer{}).Render(&buf, report); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if doc.SchemaVersion != jsonSchemaVersion {
		t.Errorf("schema_version = %d, want %d", doc.SchemaVersion, jsonSchemaVersion)
	}
	if doc.RunID != "run-1" {
		t.Errorf("run_id = %q, want run-1", doc.RunID)
	}
	if doc.DurationMS != 1500 {
		t.Errorf("duration_ms = %d, want 1500", doc.DurationMS)
	}
	if doc.Summary.Files != 2 || doc.Summary.Modules != 2 || doc.Summary.Imports != 1 {
		t.Errorf("summary counts = %+v", doc.Summary)
	}
	if doc.Summary.Errors != 1 || doc.Summary.Warnings != 1 {
		t.Errorf("severity counts = %+v, want 1 error and 1 warning", doc.Summary)
	}
	if len(doc.Diagnostics) != 2 {
		t.Fatalf("len(diagnostics) = %d, want 2", len(doc.Diagnostics))
	}

	first := doc.Diagnostics[0]
	if first.Rule != "PC002" || first.Severity != "warning" {
		t.Errorf("diagnostics[0] = %+v", first)
	}
	if first.File != "app.py" {
		t.Errorf("file = %q, want path relative to root", first.File)
	}
	if first.Line != 2 || first.Column != 1 {
		t.Errorf("location = %d:%d, want 2:1", first.Line, first.Column)
	}
	if len(doc.Warnings) != 1 {
		t.Errorf("len(warnings) = %d, want 1", len(doc.Warnings))
	}
}

func TestJSONRenderer_EmptyDiagnosticsStaysArray(t *testing.T) {
	report := sampleReport(t.TempDir())
	report.Diagnostics = nil

	var buf bytes.Buffer
	if err := (&JSONRenderer{}).Render(&buf, report); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"diagnostics": []`)) {
		t.Errorf("diagnostics should encode as an empty array, got:\n%s", buf.String())
	}
}
