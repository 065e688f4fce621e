package board

import (
	"sync"

	"github.com/appetiteclub/expedite/pkg/enums/orderstatus"
)

// Completion tracks the all-items-ready guard per order and latches the
// auto-advance so one completion episode requests preparing→ready exactly
// once, even when several item updates land in the same tick. The latch is
// evaluated by both the poll loop and operator item toggles, so it carries
// its own lock.
type Completion struct {
	mu      sync.Mutex
	latched map[OrderID]bool
}

func NewCompletion() *Completion {
	return &Completion{latched: make(map[OrderID]bool)}
}

// ShouldAdvance evaluates the guard after an item mutation or poll. It
// returns true exactly once per episode: when the guard newly holds while
// the order is preparing. Un-ticking an item clears the latch, so a later
// re-completion fires again.
func (c *Completion) ShouldAdvance(o *Order) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if o.Status != orderstatus.Statuses.Preparing.Name {
		// Leaving preparing ends the episode either way.
		delete(c.latched, o.ID)
		return false
	}

	if !o.AllItemsReady() {
		delete(c.latched, o.ID)
		return false
	}

	if c.latched[o.ID] {
		return false
	}
	c.latched[o.ID] = true
	return true
}

// Forget drops the latch for an order, e.g. after an operator reset.
func (c *Completion) Forget(id OrderID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.latched, id)
}

// Prune clears latches for orders that left the snapshot.
func (c *Completion) Prune(snap *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.latched {
		if !snap.Has(id) {
			delete(c.latched, id)
		}
	}
}
