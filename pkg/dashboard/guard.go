package dashboard

import "sync"

// loadGuard numbers each load a controller issues. A finished load may only
// publish its result while its number is still the latest one issued, so a
// slow response can never overwrite a newer one.
type loadGuard struct {
	mu     sync.Mutex
	issued uint64
}

func (g *loadGuard) begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// commit runs apply under the guard's lock if gen is still current.
func (g *loadGuard) commit(gen uint64, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.issued {
		return false
	}
	apply()
	return true
}

// locked runs fn under the guard's lock. Controllers keep their state behind
// the same lock so a commit and a read never interleave.
func (g *loadGuard) locked(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}
