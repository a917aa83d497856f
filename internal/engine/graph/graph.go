package graph

import (
	"pycheck/internal/engine/parser"
	"pycheck/internal/shared/util"
)

// RawImport is one resolved import declaration: the target module name and
// the location of the statement expressing it.
type RawImport struct {
	Module   string
	Location parser.Location
}

// ImportEdge is a directed edge of the import graph, pointing at the target
// module's id.
type ImportEdge struct {
	To       ModuleID
	Location parser.Location
}

// ImportGraph is the immutable module-level import graph for one analysis
// run. Built once from the resolved import map; node ids come from the
// registry populated during construction.
type ImportGraph struct {
	registry *ModuleRegistry
	edges    [][]ImportEdge // indexed by ModuleID
}

// Build interns every module and import target of imports and freezes the
// edge lists. Modules are interned in sorted name order so ids are
// deterministic for a given map; each module's edges keep declaration
// order, with repeated targets collapsed onto the first occurrence.
func Build(imports map[string][]RawImport) *ImportGraph {
	reg := NewModuleRegistry()

	names := util.SortedStringKeys(imports)
	for _, name := range names {
		reg.Intern(name)
		for _, imp := range imports[name] {
			reg.Intern(imp.Module)
		}
	}

	edges := make([][]ImportEdge, reg.Len())
	for _, name := range names {
		id, _ := reg.IDOf(name)
		raws := imports[name]
		if len(raws) == 0 {
			continue
		}
		seen := make(map[ModuleID]bool, len(raws))
		list := make([]ImportEdge, 0, len(raws))
		for _, imp := range raws {
			to, _ := reg.IDOf(imp.Module)
			if seen[to] {
				continue
			}
			seen[to] = true
			list = append(list, ImportEdge{To: to, Location: imp.Location})
		}
		edges[id] = list
	}

	return &ImportGraph{registry: reg, edges: edges}
}

// Registry returns the registry the graph was built with. Read-only once
// the graph exists.
func (g *ImportGraph) Registry() *ModuleRegistry {
	return g.registry
}

// EdgesOf returns id's outgoing edges in declaration order. The returned
// slice is shared; callers must not mutate it. Unknown ids have no edges.
func (g *ImportGraph) EdgesOf(id ModuleID) []ImportEdge {
	if int(id) >= len(g.edges) {
		return nil
	}
	return g.edges[id]
}

// EdgeTo returns the first-declared edge from id toward target.
func (g *ImportGraph) EdgeTo(id, target ModuleID) (ImportEdge, bool) {
	for _, e := range g.EdgesOf(id) {
		if e.To == target {
			return e, true
		}
	}
	return ImportEdge{}, false
}

// NumModules reports the node count.
func (g *ImportGraph) NumModules() int {
	return g.registry.Len()
}

// NumEdges reports the total edge count.
func (g *ImportGraph) NumEdges() int {
	n := 0
	for _, list := range g.edges {
		n += len(list)
	}
	return n
}
