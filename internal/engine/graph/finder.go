package graph

// CycleFinder discovers every simple import cycle reachable from a start
// module, filling the shared CycleCache on demand. One finder serves all
// analysis workers of a run.
type CycleFinder struct {
	graph *ImportGraph
	cache *CycleCache
}

func NewCycleFinder(g *ImportGraph, c *CycleCache) *CycleFinder {
	return &CycleFinder{graph: g, cache: c}
}

// CyclesFor returns the canonical cycles through start. The first query for
// a component traverses it exhaustively under the cache's write lock and
// commits an entry for every module it visits, so later queries on any of
// those modules are pure cache hits. A panic out of the traversal leaves
// the lock held and kills the run; a half-computed component must never be
// committed. The returned slice is owned by the cache; callers must not
// mutate it.
func (f *CycleFinder) CyclesFor(start ModuleID) ([]Cycle, error) {
	c := f.cache

	c.mu.RLock()
	if e, ok := c.entries[start]; ok {
		cycles := e.cycles
		c.mu.RUnlock()
		return cycles, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another worker may have raced us here and committed the component.
	if e, ok := c.entries[start]; ok {
		return e.cycles, nil
	}

	res := f.traverse(start)
	if err := f.commitLocked(res); err != nil {
		return nil, err
	}
	return c.entries[start].cycles, nil
}

type traversalResult struct {
	cycles  []Cycle    // discovered cycles, led by their earliest-pushed member
	visited []ModuleID // every module whose edges were fully scanned
}

type frame struct {
	id   ModuleID
	next int // next edge index to scan
}

// traverse enumerates all simple cycles reachable from start by walking
// every simple path, blocking only on path membership. Runs while the
// caller holds the cache's write lock: entries are read directly for the
// clean-subtree pruning.
func (f *CycleFinder) traverse(start ModuleID) *traversalResult {
	res := &traversalResult{}
	seen := make(map[string]bool)

	// posOnPath[id] is id's index on the current path, -1 while off-path.
	// Indexed by dense ModuleID, so membership checks in the hot loop cost
	// one slice read instead of a string hash.
	posOnPath := make([]int32, f.graph.NumModules())
	for i := range posOnPath {
		posOnPath[i] = -1
	}

	path := []ModuleID{start}
	posOnPath[start] = 0
	stack := []frame{{id: start}}
	visitedSet := make(map[ModuleID]bool)

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := f.graph.EdgesOf(top.id)

		if top.next >= len(edges) {
			if !visitedSet[top.id] {
				visitedSet[top.id] = true
				res.visited = append(res.visited, top.id)
			}
			posOnPath[top.id] = -1
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		target := edges[top.next].To
		top.next++

		if pos := posOnPath[target]; pos >= 0 {
			// The path slice from target's position closes a cycle. A
			// single-element slice is the module importing itself, which
			// is not a cycle between modules.
			slice := path[pos:]
			if len(slice) == 1 && slice[0] == top.id {
				continue
			}
			cy := make(Cycle, len(slice))
			copy(cy, slice)
			if key := cy.Key(); !seen[key] {
				seen[key] = true
				res.cycles = append(res.cycles, cy)
			}
			continue
		}

		// A subtree already resolved cycle-free by a completed traversal
		// cannot contribute a cycle and is fully committed; skip it.
		// Cyclic entries are still descended into, since this component
		// may close fresh cycles across them.
		if f.cache.stateLocked(target) == StateClean {
			continue
		}

		path = append(path, target)
		posOnPath[target] = int32(len(path) - 1)
		stack = append(stack, frame{id: target})
	}

	return res
}

// commitLocked merges one completed traversal into the cache: every
// discovered cycle is recorded under each of its members, then every
// visited module is marked clean, which is a no-op for the cycle members
// just recorded.
func (f *CycleFinder) commitLocked(res *traversalResult) error {
	c := f.cache
	for _, cy := range res.cycles {
		for _, member := range cy {
			if err := c.recordLocked(member, cy); err != nil {
				return err
			}
		}
	}
	for _, id := range res.visited {
		c.markCleanLocked(id)
	}
	return nil
}
