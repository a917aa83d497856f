package rules

import (
	"testing"

	"pycheck/internal/engine/parser"
)

func TestRegistry_StableOrderAndLookup(t *testing.T) {
	cycle, _ := cycleRuleOver(map[string][]string{"a": {}})
	reg := NewRegistry(
		NewReturnInInitRule(),
		NewEnvironAssignmentRule(),
		cycle,
		NewErrorInsteadOfExceptionRule(),
	)

	ids := make([]string, 0, len(reg.Rules()))
	for _, rule := range reg.Rules() {
		ids = append(ids, rule.Info().ID)
	}
	want := []string{"PC001", "PC002", "PC003", "PC004"}
	if len(ids) != len(want) {
		t.Fatalf("rules = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("rules = %v, want %v", ids, want)
		}
	}

	if rule, ok := reg.Lookup(NameEnvironAssignment); !ok || rule.Info().ID != "PC002" {
		t.Errorf("Lookup by name = (%v, %v)", rule, ok)
	}
	if rule, ok := reg.Lookup("PC003"); !ok || rule.Info().Name != NameErrorInsteadOfException {
		t.Errorf("Lookup by id = (%v, %v)", rule, ok)
	}
	if _, ok := reg.Lookup("no-such-rule"); ok {
		t.Error("Lookup must miss unknown names")
	}
}

func TestCatalog(t *testing.T) {
	names := Catalog()
	if len(names) != 4 {
		t.Fatalf("catalog = %v, want 4 names", names)
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			t.Errorf("duplicate catalog name %s", name)
		}
		seen[name] = true
	}
	if !seen[NameCyclicImport] {
		t.Errorf("catalog %v misses %s", names, NameCyclicImport)
	}
}

func TestSort(t *testing.T) {
	diags := []Diagnostic{
		{Rule: "PC004", Location: parser.Location{File: "b.py", Line: 2, Column: 1}},
		{Rule: "PC002", Location: parser.Location{File: "a.py", Line: 9, Column: 4}},
		{Rule: "PC003", Location: parser.Location{File: "a.py", Line: 9, Column: 1}},
		{Rule: "PC001", Location: parser.Location{File: "a.py", Line: 2, Column: 1}},
		{Rule: "PC001", Location: parser.Location{File: "b.py", Line: 2, Column: 1}},
	}
	Sort(diags)

	type key struct {
		file string
		line int
		col  int
		rule string
	}
	got := make([]key, 0, len(diags))
	for _, d := range diags {
		got = append(got, key{d.Location.File, d.Location.Line, d.Location.Column, d.Rule})
	}
	want := []key{
		{"a.py", 2, 1, "PC001"},
		{"a.py", 9, 1, "PC003"},
		{"a.py", 9, 4, "PC002"},
		{"b.py", 2, 1, "PC001"},
		{"b.py", 2, 1, "PC004"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
