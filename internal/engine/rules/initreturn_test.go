package rules

import (
	"testing"
)

func TestReturnInInitRule(t *testing.T) {
	file := parsePython(t, `class Box:
    def __init__(self, ok):
        if not ok:
            return None
        return self.setup()

    def reset(self):
        return 1

def __init__():
    return 5
`)

	rule := NewReturnInInitRule()
	diags, err := rule.Check(file)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %d, want 1: %+v", len(diags), diags)
	}
	d := diags[0]
	if d.Message != "Explicit return in `__init__`" {
		t.Errorf("message = %q", d.Message)
	}
	if d.Rule != "PC004" || d.Location.Line != 5 {
		t.Errorf("diagnostic = %+v, want PC004 at line 5", d)
	}
}

func TestReturnInInitRule_AllowsBareReturn(t *testing.T) {
	file := parsePython(t, `class Guard:
    def __init__(self):
        if self.closed:
            return
        self.open()
`)

	rule := NewReturnInInitRule()
	diags, err := rule.Check(file)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %+v, want none", diags)
	}
}
