package quote

import "sync"

// guard tracks which quotes have a recompute in flight within this process.
// A quote id is present only while its recompute runs.
type guard struct {
	mu     sync.Mutex
	active map[int64]struct{}
}

func (g *guard) tryAcquire(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[id]; busy {
		return false
	}
	if g.active == nil {
		g.active = make(map[int64]struct{})
	}
	g.active[id] = struct{}{}
	return true
}

func (g *guard) release(id int64) {
	g.mu.Lock()
	delete(g.active, id)
	g.mu.Unlock()
}

func (g *guard) inFlight(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.active[id]
	return busy
}

func (g *guard) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}
