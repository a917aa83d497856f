package rules

import (
	"testing"

	"pycheck/internal/core/errors"
	"pycheck/internal/engine/graph"
	"pycheck/internal/engine/parser"
)

func cycleRuleOver(imports map[string][]string) (*CycleRule, *graph.ImportGraph) {
	raw := make(map[string][]graph.RawImport, len(imports))
	for mod, targets := range imports {
		list := make([]graph.RawImport, 0, len(targets))
		for i, target := range targets {
			list = append(list, graph.RawImport{
				Module:   target,
				Location: parser.Location{File: mod + ".py", Line: i + 1, Column: 1},
			})
		}
		raw[mod] = list
	}
	g := graph.Build(raw)
	service := NewCycleQueryService(g, graph.NewCycleCache())
	return NewCycleRule(service), g
}

func checkModule(t *testing.T, rule *CycleRule, module string) []Diagnostic {
	t.Helper()
	diags, err := rule.Check(&parser.File{Path: module + ".py", Module: module})
	if err != nil {
		t.Fatalf("Check(%s): %v", module, err)
	}
	return diags
}

func TestCycleRule_TwoModulePackage(t *testing.T) {
	rule, _ := cycleRuleOver(map[string][]string{
		"a.a": {"a.b"},
		"a.b": {"a.a"},
		"a.c": {"a.a", "a.b"},
	})

	diags := checkModule(t, rule, "a.a")
	if len(diags) != 1 {
		t.Fatalf("a.a diagnostics = %d, want 1: %+v", len(diags), diags)
	}
	d := diags[0]
	if d.Message != "a.a -> a.b" {
		t.Errorf("message = %q, want %q", d.Message, "a.a -> a.b")
	}
	if d.Rule != "PC001" || d.Name != NameCyclicImport {
		t.Errorf("rule identity = %s/%s", d.Rule, d.Name)
	}
	if d.Location.File != "a.a.py" || d.Location.Line != 1 {
		t.Errorf("location = %+v, want the import inside a.a", d.Location)
	}

	diags = checkModule(t, rule, "a.b")
	if len(diags) != 1 || diags[0].Message != "a.b -> a.a" {
		t.Fatalf("a.b diagnostics = %+v, want one %q", diags, "a.b -> a.a")
	}
	if diags[0].Location.File != "a.b.py" {
		t.Errorf("a.b diagnostic anchored in %s, want a.b.py", diags[0].Location.File)
	}

	// a.c imports into the cycle without being part of it.
	if diags := checkModule(t, rule, "a.c"); len(diags) != 0 {
		t.Errorf("a.c diagnostics = %+v, want none", diags)
	}
}

func TestCycleRule_DenseComponent(t *testing.T) {
	rule, _ := cycleRuleOver(map[string][]string{
		"a": {"b", "c"},
		"b": {"c", "d"},
		"c": {"b", "d"},
		"d": {"a"},
	})

	diags := checkModule(t, rule, "a")
	wantLines := map[string]int{
		"a -> b -> c -> d": 1,
		"a -> c -> b -> d": 2,
		"a -> c -> d":      2,
		"a -> b -> d":      1,
	}
	if len(diags) != len(wantLines) {
		t.Fatalf("diagnostics = %d, want %d: %+v", len(diags), len(wantLines), diags)
	}
	for _, d := range diags {
		line, ok := wantLines[d.Message]
		if !ok {
			t.Errorf("unexpected cycle %q", d.Message)
			continue
		}
		delete(wantLines, d.Message)
		// Each diagnostic sits on the import of the cycle's next member,
		// not on a fixed first import.
		if d.Location.File != "a.py" || d.Location.Line != line {
			t.Errorf("cycle %q anchored at %+v, want a.py:%d", d.Message, d.Location, line)
		}
	}
	for missing := range wantLines {
		t.Errorf("missing cycle %q", missing)
	}
}

func TestCycleRule_SelfImport(t *testing.T) {
	rule, _ := cycleRuleOver(map[string][]string{
		"a": {"a"},
	})
	if diags := checkModule(t, rule, "a"); len(diags) != 0 {
		t.Errorf("self import reported: %+v", diags)
	}
}

func TestCycleRule_SkipsUnresolvedFiles(t *testing.T) {
	rule, _ := cycleRuleOver(map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})

	diags, err := rule.Check(&parser.File{Path: "scripts/tool.py"})
	if err != nil || diags != nil {
		t.Errorf("unresolved file = (%+v, %v), want (nil, nil)", diags, err)
	}

	if diags := checkModule(t, rule, "not.in.graph"); len(diags) != 0 {
		t.Errorf("unknown module reported: %+v", diags)
	}
}

func TestCycleRule_Idempotent(t *testing.T) {
	rule, _ := cycleRuleOver(map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})

	first := checkModule(t, rule, "a")
	second := checkModule(t, rule, "a")
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("diagnostics = %d then %d, want 1 each", len(first), len(second))
	}
	if first[0] != second[0] {
		t.Errorf("repeat query differs: %+v != %+v", first[0], second[0])
	}
}

func TestCycleQueryService_InconsistentCacheFails(t *testing.T) {
	raw := map[string][]graph.RawImport{
		"a": {{Module: "b", Location: parser.Location{File: "a.py", Line: 1, Column: 1}}},
		"x": nil,
	}
	g := graph.Build(raw)
	cache := graph.NewCycleCache()

	aID, _ := g.Registry().IDOf("a")
	xID, _ := g.Registry().IDOf("x")
	// A committed cycle whose edge does not exist in the graph.
	if err := cache.Record(aID, graph.Cycle{aID, xID}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	service := NewCycleQueryService(g, cache)
	_, err := service.DiagnosticsFor(Info{ID: "PC001", Name: NameCyclicImport}, "a")
	if err == nil {
		t.Fatal("expected an error for a cycle without a matching edge")
	}
	if !errors.IsCode(err, errors.CodeInternal) {
		t.Errorf("error = %v, want internal code", err)
	}
}
