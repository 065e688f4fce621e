package board

import (
	"time"

	"github.com/appetiteclub/expedite/pkg/enums/itemstatus"
	"github.com/appetiteclub/expedite/pkg/enums/orderstatus"
	"github.com/google/uuid"
)

type OrderID = uuid.UUID
type OrderItemID = uuid.UUID

// Order is the board's read-only copy of an order service aggregate.
// It is replaced on every successful poll and mutated locally only to
// reflect an optimistic item toggle until the next poll reconciles.
type Order struct {
	ID           OrderID     `json:"id"`
	Number       string      `json:"number"`
	Kind         string      `json:"order_type"`
	Status       string      `json:"status"`
	CustomerName string      `json:"customer_name,omitempty"`
	TableNumber  string      `json:"table_number,omitempty"`
	Items        []OrderItem `json:"items"`
	Total        float64     `json:"total"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID        OrderItemID `json:"id"`
	OrderID   OrderID     `json:"order_id"`
	DishName  string      `json:"dish_name"`
	Quantity  int         `json:"quantity"`
	Notes     string      `json:"notes,omitempty"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Item returns the item with the given id, or nil.
func (o *Order) Item(id OrderItemID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

// AllItemsReady reports whether every item reached ready. An order with no
// items never qualifies; missing items are surfaced, not papered over.
func (o *Order) AllItemsReady() bool {
	if len(o.Items) == 0 {
		return false
	}
	for i := range o.Items {
		if o.Items[i].Status != itemstatus.Statuses.Ready.Name {
			return false
		}
	}
	return true
}

// IsReady reports whether the order sits in the ready status.
func (o *Order) IsReady() bool {
	return o.Status == orderstatus.Statuses.Ready.Name
}

// MinutesSinceCreated derives waiting time from wall-clock now. Derived
// values are recomputed every tick and never cached.
func (o *Order) MinutesSinceCreated(now time.Time) int {
	return elapsedMinutes(o.CreatedAt, now)
}

// MinutesSinceUpdated derives time since the last backend mutation.
func (o *Order) MinutesSinceUpdated(now time.Time) int {
	return elapsedMinutes(o.UpdatedAt, now)
}

// Clone returns a deep copy safe to mutate optimistically.
func (o *Order) Clone() *Order {
	dup := *o
	dup.Items = make([]OrderItem, len(o.Items))
	copy(dup.Items, o.Items)
	return &dup
}

func elapsedMinutes(since, now time.Time) int {
	if since.IsZero() || now.Before(since) {
		return 0
	}
	return int(now.Sub(since) / time.Minute)
}

// itemStatuses renders the item status sequence used for change detection.
func itemStatuses(o *Order) []string {
	statuses := make([]string, len(o.Items))
	for i := range o.Items {
		statuses[i] = o.Items[i].Status
	}
	return statuses
}
