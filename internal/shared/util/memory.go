package util

import (
	"runtime"
)

// GetHeapAllocMB returns the current heap allocation in MB.
func GetHeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc / 1024 / 1024
}

// MemoryGuard sheds parse-cache entries when heap allocation crosses a soft
// limit, so long watch sessions over large trees stay bounded. A zero limit
// disables shedding.
type MemoryGuard struct {
	limitMB uint64
	batch   int
	shed    func(n int) int
	heapMB  func() uint64
}

func NewMemoryGuard(limitMB uint64, batch int, shed func(n int) int) *MemoryGuard {
	if batch <= 0 {
		batch = 32
	}
	return &MemoryGuard{
		limitMB: limitMB,
		batch:   batch,
		shed:    shed,
		heapMB:  GetHeapAllocMB,
	}
}

// Relieve sheds one batch of entries when the heap is over the limit and
// reports how many entries were dropped.
func (g *MemoryGuard) Relieve() int {
	if g.limitMB == 0 || g.shed == nil {
		return 0
	}
	if g.heapMB() <= g.limitMB {
		return 0
	}
	return g.shed(g.batch)
}
