package rules

import (
	"testing"

	"pycheck/internal/engine/parser"
)

func parsePython(t *testing.T, code string) *parser.File {
	t.Helper()
	p := parser.NewParser()
	file, err := p.ParseFile("app.py", []byte(code))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return file
}

func TestEnvironAssignmentRule(t *testing.T) {
	file := parsePython(t, `import os

os.environ = {"PATH": "/bin"}
os.environ["KEY"] = "value"
os.environ.update(extra)
env = {}
`)

	rule := NewEnvironAssignmentRule()
	diags, err := rule.Check(file)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %d, want 1: %+v", len(diags), diags)
	}
	d := diags[0]
	if d.Message != "Assigning to `os.environ` doesn't clear the environment" {
		t.Errorf("message = %q", d.Message)
	}
	if d.Rule != "PC002" || d.Location.Line != 3 {
		t.Errorf("diagnostic = %+v, want PC002 at line 3", d)
	}
}

func TestEnvironAssignmentRule_IgnoresOtherAttributes(t *testing.T) {
	file := parsePython(t, `config.environ = {}
self.os = sentinel
`)

	rule := NewEnvironAssignmentRule()
	diags, err := rule.Check(file)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %+v, want none", diags)
	}
}
