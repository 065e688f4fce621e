package board

import (
	"sort"
	"time"

	"github.com/appetiteclub/expedite/pkg/enums/orderstatus"
)

// Classification of one order within a tick, relative to the retained
// snapshot. Exactly one applies per order.
type Classification string

const (
	ClassUnchanged Classification = "unchanged"
	ClassNew       Classification = "new"
	ClassAdvanced  Classification = "advanced"
)

// Delta describes how a fetched order relates to the retained snapshot.
type Delta struct {
	Order    *Order
	Previous *Order // nil when Class == ClassNew
	Class    Classification

	// BecameReady is set when the order entered ready this tick: either a
	// known order whose status advanced to ready, or a brand-new order
	// first observed already ready.
	BecameReady bool
}

// Diff classifies each fetched order against the previous snapshot. The
// previous snapshot is read-only here; committing the new one is the
// engine's job and happens only after side effects were issued.
func Diff(prev *Snapshot, fetched []Order) []Delta {
	deltas := make([]Delta, 0, len(fetched))
	for i := range fetched {
		curr := &fetched[i]
		before := prev.Get(curr.ID)

		d := Delta{Order: curr, Previous: before}
		switch {
		case before == nil:
			d.Class = ClassNew
			d.BecameReady = curr.IsReady()
		case statusChanged(before, curr):
			d.Class = ClassAdvanced
			d.BecameReady = curr.IsReady() && !before.IsReady()
		default:
			d.Class = ClassUnchanged
		}
		deltas = append(deltas, d)
	}
	return deltas
}

// statusChanged reports whether the order status or any item status moved.
func statusChanged(before, curr *Order) bool {
	if before.Status != curr.Status {
		return true
	}
	prevItems := itemStatuses(before)
	currItems := itemStatuses(curr)
	if len(prevItems) != len(currItems) {
		return true
	}
	for i := range currItems {
		if prevItems[i] != currItems[i] {
			return true
		}
	}
	return false
}

// ReferenceTime selects which timestamp drives display ordering and
// urgency: creation for the kitchen queue, last update for pickup.
type ReferenceTime int

const (
	ReferenceCreated ReferenceTime = iota
	ReferenceUpdated
)

// At returns the reference timestamp of an order.
func (r ReferenceTime) At(o *Order) time.Time {
	if r == ReferenceUpdated {
		return o.UpdatedAt
	}
	return o.CreatedAt
}

// SortForDisplay orders longest-waiting first (oldest reference timestamp
// first), ties broken by order id for determinism.
func SortForDisplay(orders []*Order, ref ReferenceTime) {
	sort.SliceStable(orders, func(i, j int) bool {
		ti, tj := ref.At(orders[i]), ref.At(orders[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return orders[i].ID.String() < orders[j].ID.String()
	})
}

// PartitionByStatus groups orders into the given status columns. Orders in
// unlisted statuses are dropped from display.
func PartitionByStatus(orders []*Order, statuses []string) map[string][]*Order {
	columns := make(map[string][]*Order, len(statuses))
	for _, status := range statuses {
		if orderstatus.ByName(status) == nil {
			continue
		}
		columns[status] = nil
	}
	for _, o := range orders {
		if _, tracked := columns[o.Status]; !tracked {
			continue
		}
		columns[o.Status] = append(columns[o.Status], o)
	}
	return columns
}
