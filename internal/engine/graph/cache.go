package graph

import (
	"strconv"
	"strings"
	"sync"

	"pycheck/internal/core/errors"
)

// CycleState classifies a module's cache entry.
type CycleState int

const (
	StateUnknown CycleState = iota // never traversed
	StateClean                     // traversed, no cycle through it
	StateCyclic                    // traversed, cycles recorded
)

func (s CycleState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateCyclic:
		return "cyclic"
	default:
		return "unknown"
	}
}

// Cycle is a simple import cycle: each member imports the next and the last
// imports the first. Cached cycles are stored in canonical rotation, led by
// the module whose entry holds them.
type Cycle []ModuleID

// Key is the structural identity of this rotation.
func (c Cycle) Key() string {
	var b strings.Builder
	for i, id := range c {
		if i > 0 {
			b.WriteByte('>')
		}
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return b.String()
}

// rotatedTo returns the rotation of c led by leader, or ok=false when
// leader is not a member.
func (c Cycle) rotatedTo(leader ModuleID) (Cycle, bool) {
	for i, id := range c {
		if id != leader {
			continue
		}
		out := make(Cycle, 0, len(c))
		out = append(out, c[i:]...)
		out = append(out, c[:i]...)
		return out, true
	}
	return nil, false
}

// CycleCache stores, per module, whether the module participates in import
// cycles and which. Entries only move forward: unknown to clean, or unknown
// to cyclic with merge-only growth, so overlapping traversals can commit
// the same results without loss. One RWMutex guards the table; a whole
// traversal commits inside a single exclusive section, so readers observe
// either none or all of its entries.
//
// Lifecycle: created empty per analysis run, shared by all workers,
// discarded when the run ends.
type CycleCache struct {
	mu      sync.RWMutex
	entries map[ModuleID]*cacheEntry
}

type cacheEntry struct {
	cycles []Cycle // insertion order, deterministic across repeat queries
	keys   map[string]bool
}

func NewCycleCache() *CycleCache {
	return &CycleCache{entries: make(map[ModuleID]*cacheEntry)}
}

// State reports id's entry phase.
func (c *CycleCache) State(id ModuleID) CycleState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked(id)
}

// Lookup returns the committed cycles through id; ok is false while the
// module was never traversed. Clean modules return ok=true and no cycles.
// The returned slice is owned by the cache; callers must not mutate it.
func (c *CycleCache) Lookup(id ModuleID) ([]Cycle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return e.cycles, true
}

// Record merges cycle into id's entry, rotated so id leads. Recording an
// already-present rotation is a no-op. An id that is not a member of the
// cycle indicates an inconsistency between graph and cache.
func (c *CycleCache) Record(id ModuleID, cycle Cycle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordLocked(id, cycle)
}

// MarkClean transitions id from unknown to clean. Entries that already hold
// cycles are left untouched; clean never overwrites cyclic.
func (c *CycleCache) MarkClean(id ModuleID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markCleanLocked(id)
}

// Len reports how many modules have committed entries.
func (c *CycleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CyclicModules reports how many committed entries hold at least one cycle.
func (c *CycleCache) CyclicModules() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if len(e.cycles) > 0 {
			n++
		}
	}
	return n
}

func (c *CycleCache) stateLocked(id ModuleID) CycleState {
	e, ok := c.entries[id]
	switch {
	case !ok:
		return StateUnknown
	case len(e.cycles) == 0:
		return StateClean
	default:
		return StateCyclic
	}
}

func (c *CycleCache) recordLocked(id ModuleID, cycle Cycle) error {
	rot, ok := cycle.rotatedTo(id)
	if !ok {
		name := strconv.FormatUint(uint64(id), 10)
		return errors.Newf(errors.CodeInternal, "module %s is not a member of cycle %s", name, cycle.Key())
	}
	e := c.entries[id]
	if e == nil {
		e = &cacheEntry{}
		c.entries[id] = e
	}
	if e.keys == nil {
		e.keys = make(map[string]bool)
	}
	key := rot.Key()
	if e.keys[key] {
		return nil
	}
	e.keys[key] = true
	e.cycles = append(e.cycles, rot)
	return nil
}

func (c *CycleCache) markCleanLocked(id ModuleID) {
	if _, ok := c.entries[id]; ok {
		return
	}
	c.entries[id] = &cacheEntry{}
}
