package parallel

import (
	"sync"
	"sync/atomic"
)

// Ops is the work of one ghost-cell pass over n chunks.
type Ops interface {
	// ExchangeBorders copies border state between chunks i-1 and i.
	ExchangeBorders(i int)
	// UpdateInterior advances chunk i once both of its borders are ready.
	UpdateInterior(i int)
}

// GhostCell runs ops over n chunks. ExchangeBorders(i) completes before
// UpdateInterior(i-1) or UpdateInterior(i) starts. Exchanges run first and
// concurrently; each update starts as soon as its own borders are done. With
// a nil or single-worker pool the pass runs serially on the caller.
func GhostCell(n int, ops Ops, pool *Pool) {
	if n <= 0 {
		return
	}
	if pool == nil || pool.Workers() <= 1 || n == 1 {
		for i := n - 1; i >= 0; i-- {
			if i > 0 {
				ops.ExchangeBorders(i)
			}
			ops.UpdateInterior(i)
		}
		return
	}

	// pending[i] counts the exchanges UpdateInterior(i) still waits for.
	pending := make([]atomic.Int32, n)
	for i := range pending {
		var deps int32
		if i > 0 {
			deps++
		}
		if i < n-1 {
			deps++
		}
		pending[i].Store(deps)
	}

	var wg sync.WaitGroup
	wg.Add(n)
	update := func(i int) {
		defer wg.Done()
		ops.UpdateInterior(i)
	}
	release := func(i int) {
		if pending[i].Add(-1) == 0 {
			pool.Submit(func() { update(i) })
		}
	}
	for i := 1; i < n; i++ {
		pool.Submit(func() {
			ops.ExchangeBorders(i)
			release(i - 1)
			release(i)
		})
	}
	wg.Wait()
}

// Bands adapts a per-band function with no border state to Ops.
type Bands func(i int)

// ExchangeBorders does nothing; bands share no state.
func (Bands) ExchangeBorders(int) {}

// UpdateInterior runs the band.
func (b Bands) UpdateInterior(i int) { b(i) }
