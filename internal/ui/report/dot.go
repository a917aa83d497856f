package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"pycheck/internal/core/app"
	"pycheck/internal/engine/graph"
)

// DotRenderer draws the import graph in Graphviz dot syntax, highlighting
// cyclic modules and the edges that close their cycles. It renders the
// graph a run produced, not the report, so it needs the run's graph and
// cycle cache alongside.
type DotRenderer struct {
	graph  *graph.ImportGraph
	cycles *graph.CycleCache
}

func (r *DotRenderer) Render(w io.Writer, report *app.Report) error {
	var buf strings.Builder

	buf.WriteString("digraph imports {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	reg := r.graph.Registry()

	names := make([]string, 0, reg.Len())
	for id := 0; id < reg.Len(); id++ {
		name, _ := reg.NameOf(graph.ModuleID(id))
		names = append(names, name)
	}
	sort.Strings(names)

	cycleEdges := r.cycleEdgeSet()

	for _, name := range names {
		id, _ := reg.IDOf(name)
		if r.cycles != nil && r.cycles.State(id) == graph.StateCyclic {
			buf.WriteString(fmt.Sprintf("  %q [fillcolor=\"mistyrose\", color=\"red\", style=\"rounded,filled\", penwidth=2.0];\n", name))
			continue
		}
		buf.WriteString(fmt.Sprintf("  %q [color=\"darkslategrey\"];\n", name))
	}
	buf.WriteString("\n")

	for _, name := range names {
		id, _ := reg.IDOf(name)
		for _, edge := range r.graph.EdgesOf(id) {
			target, _ := reg.NameOf(edge.To)
			if cycleEdges[edgeKey(id, edge.To)] {
				buf.WriteString(fmt.Sprintf("  %q -> %q [color=\"red\", penwidth=3.0, label=\"cycle\"];\n", name, target))
				continue
			}
			buf.WriteString(fmt.Sprintf("  %q -> %q [color=\"darkslategrey\"];\n", name, target))
		}
	}

	buf.WriteString("}\n")

	_, err := io.WriteString(w, buf.String())
	return err
}

// cycleEdgeSet collects every consecutive pair of every cached cycle, so
// the closing edges can be drawn apart from ordinary imports.
func (r *DotRenderer) cycleEdgeSet() map[string]bool {
	edges := make(map[string]bool)
	if r.cycles == nil {
		return edges
	}
	reg := r.graph.Registry()
	for id := 0; id < reg.Len(); id++ {
		cycles, ok := r.cycles.Lookup(graph.ModuleID(id))
		if !ok {
			continue
		}
		for _, cycle := range cycles {
			for i, from := range cycle {
				to := cycle[(i+1)%len(cycle)]
				edges[edgeKey(from, to)] = true
			}
		}
	}
	return edges
}

func edgeKey(from, to graph.ModuleID) string {
	return fmt.Sprintf("%d>%d", from, to)
}
