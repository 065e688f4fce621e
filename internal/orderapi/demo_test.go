package orderapi

import (
	"context"
	"testing"

	"github.com/appetiteclub/expedite/pkg/enums/itemstatus"
	"github.com/appetiteclub/expedite/pkg/enums/orderstatus"
	"github.com/google/uuid"
)

func TestDemoSeedsActiveOrders(t *testing.T) {
	demo := NewDemoOrderService()

	orders, err := demo.ActiveOrders(context.Background())
	if err != nil {
		t.Fatalf("ActiveOrders() error = %v", err)
	}
	if len(orders) != 4 {
		t.Fatalf("seeded %d orders, want 4", len(orders))
	}

	for _, o := range orders {
		if len(o.Items) == 0 {
			t.Errorf("order #%s seeded without items", o.Number)
		}
		if o.CreatedAt.IsZero() {
			t.Errorf("order #%s seeded without a creation time", o.Number)
		}
	}
}

func TestDemoScopedFiltering(t *testing.T) {
	demo := NewDemoOrderService()

	scoped := demo.Scoped([]string{orderstatus.Statuses.Ready.Name})
	orders, err := scoped.ActiveOrders(context.Background())
	if err != nil {
		t.Fatalf("ActiveOrders() error = %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("ready scope returned %d orders, want 1", len(orders))
	}
	if orders[0].Number != "1045" {
		t.Errorf("ready scope returned #%s, want #1045", orders[0].Number)
	}
}

func TestDemoServedLeavesActiveSet(t *testing.T) {
	demo := NewDemoOrderService()

	orders, _ := demo.ActiveOrders(context.Background())
	var ready *uuid.UUID
	for _, o := range orders {
		if o.Status == orderstatus.Statuses.Ready.Name {
			id := o.ID
			ready = &id
		}
	}
	if ready == nil {
		t.Fatal("no seeded ready order")
	}

	if err := demo.SetOrderStatus(context.Background(), *ready, orderstatus.Statuses.Served.Name); err != nil {
		t.Fatalf("SetOrderStatus() error = %v", err)
	}

	orders, _ = demo.ActiveOrders(context.Background())
	for _, o := range orders {
		if o.ID == *ready {
			t.Error("served order still in the active set")
		}
	}
	if len(orders) != 3 {
		t.Errorf("active set has %d orders after serving, want 3", len(orders))
	}
}

func TestDemoSetItemStatus(t *testing.T) {
	demo := NewDemoOrderService()

	orders, _ := demo.ActiveOrders(context.Background())
	var orderID, itemID uuid.UUID
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Status == itemstatus.Statuses.Pending.Name {
				orderID, itemID = o.ID, item.ID
			}
		}
	}
	if itemID == uuid.Nil {
		t.Fatal("no seeded pending item")
	}

	if err := demo.SetItemStatus(context.Background(), orderID, itemID, itemstatus.Statuses.Ready.Name); err != nil {
		t.Fatalf("SetItemStatus() error = %v", err)
	}

	orders, _ = demo.ActiveOrders(context.Background())
	for _, o := range orders {
		if o.ID != orderID {
			continue
		}
		if got := o.Item(itemID).Status; got != itemstatus.Statuses.Ready.Name {
			t.Errorf("item status = %q after update, want ready", got)
		}
	}
}

func TestDemoRejectsUnknownStatus(t *testing.T) {
	demo := NewDemoOrderService()

	orders, _ := demo.ActiveOrders(context.Background())
	if err := demo.SetOrderStatus(context.Background(), orders[0].ID, "vaporized"); err == nil {
		t.Error("unknown order status accepted")
	}
	if err := demo.SetItemStatus(context.Background(), orders[0].ID, orders[0].Items[0].ID, "vaporized"); err == nil {
		t.Error("unknown item status accepted")
	}
}

func TestDemoUnknownOrder(t *testing.T) {
	demo := NewDemoOrderService()

	if err := demo.SetOrderStatus(context.Background(), uuid.New(), orderstatus.Statuses.Ready.Name); err == nil {
		t.Error("unknown order accepted")
	}
}
