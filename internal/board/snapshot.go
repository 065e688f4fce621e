package board

import (
	"time"
)

// Snapshot is the retained view of one poll response. It is built once,
// swapped in whole, and never merged with a later response, so readers
// always observe the orders exactly as one fetch returned them.
type Snapshot struct {
	orders  map[OrderID]*Order
	ordered []OrderID
	takenAt time.Time
}

// NewSnapshot copies the fetched orders into a snapshot, keeping the fetch
// order for deterministic iteration.
func NewSnapshot(orders []Order, takenAt time.Time) *Snapshot {
	s := &Snapshot{
		orders:  make(map[OrderID]*Order, len(orders)),
		ordered: make([]OrderID, 0, len(orders)),
		takenAt: takenAt,
	}
	for i := range orders {
		o := orders[i].Clone()
		if _, dup := s.orders[o.ID]; dup {
			continue
		}
		s.orders[o.ID] = o
		s.ordered = append(s.ordered, o.ID)
	}
	return s
}

func emptySnapshot() *Snapshot {
	return &Snapshot{orders: make(map[OrderID]*Order)}
}

// withOrder returns a copy of the snapshot holding an optimistic local
// order on top of the retained ones. Snapshots are never mutated after
// publication: readers that grabbed the old pointer keep a consistent view
// while the engine swaps in the copy.
func (s *Snapshot) withOrder(o *Order) *Snapshot {
	dup := &Snapshot{
		orders:  make(map[OrderID]*Order, len(s.orders)+1),
		ordered: make([]OrderID, len(s.ordered), len(s.ordered)+1),
		takenAt: s.takenAt,
	}
	for id, retained := range s.orders {
		dup.orders[id] = retained
	}
	copy(dup.ordered, s.ordered)

	if _, known := dup.orders[o.ID]; !known {
		dup.ordered = append(dup.ordered, o.ID)
	}
	dup.orders[o.ID] = o
	return dup
}

// Get returns the retained order for an id, or nil.
func (s *Snapshot) Get(id OrderID) *Order {
	if s == nil {
		return nil
	}
	return s.orders[id]
}

// Has reports whether the order id was present in the retained poll.
func (s *Snapshot) Has(id OrderID) bool {
	if s == nil {
		return false
	}
	_, ok := s.orders[id]
	return ok
}

// Orders returns the retained orders in fetch order.
func (s *Snapshot) Orders() []*Order {
	if s == nil {
		return nil
	}
	result := make([]*Order, 0, len(s.ordered))
	for _, id := range s.ordered {
		if o := s.orders[id]; o != nil {
			result = append(result, o)
		}
	}
	return result
}

// Len returns the number of retained orders.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.orders)
}

// TakenAt returns when the retained poll completed.
func (s *Snapshot) TakenAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.takenAt
}
