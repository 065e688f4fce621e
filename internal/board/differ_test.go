package board

import (
	"testing"
	"time"

	"github.com/appetiteclub/expedite/pkg/enums/itemstatus"
	"github.com/appetiteclub/expedite/pkg/enums/orderstatus"
	"github.com/google/uuid"
)

func testOrder(status string, created time.Time, itemStatuses ...string) Order {
	id := uuid.New()
	o := Order{
		ID:        id,
		Number:    id.String()[:8],
		Kind:      "dine_in",
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, s := range itemStatuses {
		o.Items = append(o.Items, OrderItem{
			ID:      uuid.New(),
			OrderID: id,
			Status:  s,
		})
	}
	return o
}

func TestDiffEmptyPrevious(t *testing.T) {
	now := time.Now()
	fetched := []Order{
		testOrder(orderstatus.Statuses.Confirmed.Name, now),
		testOrder(orderstatus.Statuses.Ready.Name, now),
	}

	deltas := Diff(emptySnapshot(), fetched)

	if len(deltas) != 2 {
		t.Fatalf("Diff() returned %d deltas, want 2", len(deltas))
	}
	for _, d := range deltas {
		if d.Class != ClassNew {
			t.Errorf("delta for %s Class = %v, want %v", d.Order.ID, d.Class, ClassNew)
		}
		if d.Previous != nil {
			t.Errorf("delta for %s has non-nil Previous", d.Order.ID)
		}
	}

	// An order first observed already ready counts as became-ready.
	if deltas[0].BecameReady {
		t.Error("confirmed order flagged BecameReady")
	}
	if !deltas[1].BecameReady {
		t.Error("ready order not flagged BecameReady")
	}
}

func TestDiffUnchanged(t *testing.T) {
	now := time.Now()
	o := testOrder(orderstatus.Statuses.Preparing.Name, now, itemstatus.Statuses.Pending.Name)

	prev := NewSnapshot([]Order{o}, now)
	deltas := Diff(prev, []Order{o})

	if len(deltas) != 1 {
		t.Fatalf("Diff() returned %d deltas, want 1", len(deltas))
	}
	if deltas[0].Class != ClassUnchanged {
		t.Errorf("Class = %v, want %v", deltas[0].Class, ClassUnchanged)
	}
	if deltas[0].BecameReady {
		t.Error("unchanged order flagged BecameReady")
	}
}

func TestDiffStatusAdvanced(t *testing.T) {
	now := time.Now()
	o := testOrder(orderstatus.Statuses.Preparing.Name, now)
	prev := NewSnapshot([]Order{o}, now)

	advanced := o
	advanced.Status = orderstatus.Statuses.Ready.Name

	deltas := Diff(prev, []Order{advanced})

	if deltas[0].Class != ClassAdvanced {
		t.Errorf("Class = %v, want %v", deltas[0].Class, ClassAdvanced)
	}
	if !deltas[0].BecameReady {
		t.Error("preparing→ready not flagged BecameReady")
	}
	if deltas[0].Previous == nil || deltas[0].Previous.Status != orderstatus.Statuses.Preparing.Name {
		t.Error("Previous does not hold the retained copy")
	}
}

func TestDiffItemStatusAdvanced(t *testing.T) {
	now := time.Now()
	o := testOrder(orderstatus.Statuses.Preparing.Name, now,
		itemstatus.Statuses.Pending.Name, itemstatus.Statuses.Pending.Name)
	prev := NewSnapshot([]Order{o}, now)

	changed := o
	changed.Items = make([]OrderItem, len(o.Items))
	copy(changed.Items, o.Items)
	changed.Items[1].Status = itemstatus.Statuses.Ready.Name

	deltas := Diff(prev, []Order{changed})

	if deltas[0].Class != ClassAdvanced {
		t.Errorf("Class = %v, want %v (item-level change must classify as advanced)", deltas[0].Class, ClassAdvanced)
	}
	if deltas[0].BecameReady {
		t.Error("item change flagged BecameReady without order status change")
	}
}

func TestDiffReadyStaysReady(t *testing.T) {
	now := time.Now()
	o := testOrder(orderstatus.Statuses.Ready.Name, now)
	prev := NewSnapshot([]Order{o}, now)

	deltas := Diff(prev, []Order{o})

	if deltas[0].BecameReady {
		t.Error("order already ready in previous snapshot flagged BecameReady again")
	}
}

func TestSortForDisplayLongestWaitingFirst(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	oldest := testOrder(orderstatus.Statuses.Confirmed.Name, base.Add(-20*time.Minute))
	middle := testOrder(orderstatus.Statuses.Confirmed.Name, base.Add(-10*time.Minute))
	newest := testOrder(orderstatus.Statuses.Confirmed.Name, base.Add(-1*time.Minute))

	orders := []*Order{&newest, &oldest, &middle}
	SortForDisplay(orders, ReferenceCreated)

	if orders[0].ID != oldest.ID || orders[1].ID != middle.ID || orders[2].ID != newest.ID {
		t.Error("SortForDisplay did not order longest waiting first")
	}
}

func TestSortForDisplayTieBreakByID(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a := testOrder(orderstatus.Statuses.Ready.Name, created)
	a.ID = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := testOrder(orderstatus.Statuses.Ready.Name, created)
	b.ID = uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	orders := []*Order{&b, &a}
	SortForDisplay(orders, ReferenceUpdated)

	if orders[0].ID != a.ID {
		t.Error("tie not broken by ascending order id")
	}
}

func TestPartitionByStatus(t *testing.T) {
	now := time.Now()
	confirmed := testOrder(orderstatus.Statuses.Confirmed.Name, now)
	ready := testOrder(orderstatus.Statuses.Ready.Name, now)
	served := testOrder(orderstatus.Statuses.Served.Name, now)

	columns := PartitionByStatus(
		[]*Order{&confirmed, &ready, &served},
		[]string{orderstatus.Statuses.Confirmed.Name, orderstatus.Statuses.Ready.Name},
	)

	if len(columns[orderstatus.Statuses.Confirmed.Name]) != 1 {
		t.Error("confirmed column missing its order")
	}
	if len(columns[orderstatus.Statuses.Ready.Name]) != 1 {
		t.Error("ready column missing its order")
	}
	if _, ok := columns[orderstatus.Statuses.Served.Name]; ok {
		t.Error("untracked status produced a column")
	}
}
