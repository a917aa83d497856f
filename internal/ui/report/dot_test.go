package report

import (
	"bytes"
	"strings"
	"testing"

	"pycheck/internal/core/app"
	"pycheck/internal/engine/graph"
)

func TestDotRenderer(t *testing.T) {
	g := graph.Build(map[string][]graph.RawImport{
		"pkg.a": {{Module: "pkg.b"}},
		"pkg.b": {{Module: "pkg.a"}},
		"pkg.c": {{Module: "pkg.a"}},
	})
	cache := graph.NewCycleCache()
	finder := graph.NewCycleFinder(g, cache)
	for _, name := range []string{"pkg.a", "pkg.b", "pkg.c"} {
		id, ok := g.Registry().IDOf(name)
		if !ok {
			t.Fatalf("module %q not interned", name)
		}
		if _, err := finder.CyclesFor(id); err != nil {
			t.Fatalf("CyclesFor(%s) returned error: %v", name, err)
		}
	}

	renderer, err := ForFormat(Options{Format: "dot", Graph: g, Cycles: cache})
	if err != nil {
		t.Fatalf("ForFormat returned error: %v", err)
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, &app.Report{}); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	dot := buf.String()

	if !strings.Contains(dot, "digraph imports") {
		t.Error("missing digraph header")
	}
	if !strings.Contains(dot, `"pkg.a" [fillcolor="mistyrose", color="red"`) {
		t.Errorf("cyclic module pkg.a not highlighted, got:\n%s", dot)
	}
	if !strings.Contains(dot, `"pkg.c" [color="darkslategrey"]`) {
		t.Errorf("clean module pkg.c should render plainly, got:\n%s", dot)
	}
	if !strings.Contains(dot, `"pkg.a" -> "pkg.b" [color="red", penwidth=3.0, label="cycle"]`) {
		t.Errorf("cycle edge a->b not highlighted, got:\n%s", dot)
	}
	if !strings.Contains(dot, `"pkg.b" -> "pkg.a" [color="red"`) {
		t.Errorf("cycle edge b->a not highlighted, got:\n%s", dot)
	}
	if !strings.Contains(dot, `"pkg.c" -> "pkg.a" [color="darkslategrey"]`) {
		t.Errorf("non-cycle edge c->a should render plainly, got:\n%s", dot)
	}
}

func TestDotRenderer_EmptyGraph(t *testing.T) {
	g := graph.Build(nil)
	renderer := &DotRenderer{graph: g, cycles: graph.NewCycleCache()}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, &app.Report{}); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "digraph imports {") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Errorf("output not closed:\n%s", buf.String())
	}
}
