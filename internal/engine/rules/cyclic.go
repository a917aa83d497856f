package rules

import (
	"strconv"
	"strings"

	"pycheck/internal/core/errors"
	"pycheck/internal/engine/graph"
	"pycheck/internal/engine/parser"
)

// CycleQueryService answers cyclic-import queries per module against a
// shared graph and cache. The first query for a strongly connected region
// pays for its traversal; every later query on any module of that region is
// a cache hit. Safe for concurrent use by the analysis workers.
type CycleQueryService struct {
	graph  *graph.ImportGraph
	finder *graph.CycleFinder
}

func NewCycleQueryService(g *graph.ImportGraph, cache *graph.CycleCache) *CycleQueryService {
	return &CycleQueryService{graph: g, finder: graph.NewCycleFinder(g, cache)}
}

// DiagnosticsFor renders one diagnostic per cycle through module, each
// anchored at the import statement leaving module toward the next member of
// that cycle. A module name absent from the import graph yields nothing.
func (s *CycleQueryService) DiagnosticsFor(info Info, module string) ([]Diagnostic, error) {
	id, ok := s.graph.Registry().IDOf(module)
	if !ok {
		return nil, nil
	}

	cycles, err := s.finder.CyclesFor(id)
	if err != nil {
		return nil, err
	}
	if len(cycles) == 0 {
		return nil, nil
	}

	out := make([]Diagnostic, 0, len(cycles))
	for _, cy := range cycles {
		if len(cy) < 2 {
			err := errors.Newf(errors.CodeInternal, "cached cycle %s through %s has fewer than two members", cy.Key(), module)
			return nil, errors.AddContext(err, errors.CtxModule, module)
		}
		edge, ok := s.graph.EdgeTo(id, cy[1])
		if !ok {
			err := errors.Newf(errors.CodeInternal, "no import edge from %s toward %s for a cached cycle", module, s.nameOf(cy[1]))
			return nil, errors.AddContext(err, errors.CtxModule, module)
		}
		out = append(out, info.diag(s.message(cy), edge.Location))
	}
	return out, nil
}

func (s *CycleQueryService) message(cy graph.Cycle) string {
	var b strings.Builder
	for i, id := range cy {
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(s.nameOf(id))
	}
	return b.String()
}

func (s *CycleQueryService) nameOf(id graph.ModuleID) string {
	if name, ok := s.graph.Registry().NameOf(id); ok {
		return name
	}
	return "module#" + strconv.FormatUint(uint64(id), 10)
}

// CycleRule reports import cycles through the checked file's module.
type CycleRule struct {
	info    Info
	service *CycleQueryService
}

func NewCycleRule(service *CycleQueryService) *CycleRule {
	return &CycleRule{
		info:    Info{ID: "PC001", Name: NameCyclicImport, Severity: SeverityWarning},
		service: service,
	}
}

func (r *CycleRule) Info() Info { return r.info }

// Check reports every cycle the file's module participates in. Files whose
// module name was never resolved (no package root, or outside it) are not
// checkable and yield nothing.
func (r *CycleRule) Check(file *parser.File) ([]Diagnostic, error) {
	if file.Module == "" {
		return nil, nil
	}
	return r.service.DiagnosticsFor(r.info, file.Module)
}
