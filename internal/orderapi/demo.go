package orderapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/expedite/internal/board"
	"github.com/appetiteclub/expedite/pkg/enums/itemstatus"
	"github.com/appetiteclub/expedite/pkg/enums/orderstatus"
	"github.com/appetiteclub/expedite/pkg/enums/ordertype"
	"github.com/google/uuid"
)

// DemoOrderService is an in-memory stand-in for the order service so the
// boards can run without the rest of the platform. It implements both
// board.OrderSource and board.StatusGateway.
type DemoOrderService struct {
	mu     sync.RWMutex
	orders map[board.OrderID]*board.Order
	clock  func() time.Time
}

// NewDemoOrderService seeds a handful of realistic orders at staggered
// ages, matching the demo seeding the platform services ship with. One
// instance backs every board so staff actions stay consistent across them.
func NewDemoOrderService() *DemoOrderService {
	s := &DemoOrderService{
		orders: make(map[board.OrderID]*board.Order),
		clock:  time.Now,
	}
	s.seed()
	return s
}

// Scoped returns a board.OrderSource restricted to a status filter, the
// in-memory equivalent of the /orders?status= query.
func (s *DemoOrderService) Scoped(statuses []string) *ScopedDemoSource {
	return &ScopedDemoSource{svc: s, statuses: statuses}
}

type ScopedDemoSource struct {
	svc      *DemoOrderService
	statuses []string
}

func (sc *ScopedDemoSource) ActiveOrders(ctx context.Context) ([]board.Order, error) {
	return sc.svc.activeOrders(ctx, sc.statuses)
}

func (s *DemoOrderService) seed() {
	now := s.clock()

	seeds := []struct {
		number  string
		kind    string
		status  string
		minutes int
		dishes  []string
		ready   int // first N dishes already ready
	}{
		{"1042", ordertype.Types.DineIn.Name, orderstatus.Statuses.Confirmed.Name, 2, []string{"Margherita Pizza", "Caesar Salad"}, 0},
		{"1043", ordertype.Types.Takeout.Name, orderstatus.Statuses.Preparing.Name, 8, []string{"Pad Thai", "Spring Rolls", "Tom Yum"}, 1},
		{"1044", ordertype.Types.Delivery.Name, orderstatus.Statuses.Preparing.Name, 17, []string{"Double Burger", "Fries"}, 2},
		{"1045", ordertype.Types.DineIn.Name, orderstatus.Statuses.Ready.Name, 22, []string{"Ribeye Steak"}, 1},
	}

	for _, sd := range seeds {
		created := now.Add(-time.Duration(sd.minutes) * time.Minute)
		o := &board.Order{
			ID:        uuid.New(),
			Number:    sd.number,
			Kind:      sd.kind,
			Status:    sd.status,
			CreatedAt: created,
			UpdatedAt: created,
		}
		for i, dish := range sd.dishes {
			status := itemstatus.Statuses.Pending.Name
			if i < sd.ready {
				status = itemstatus.Statuses.Ready.Name
			}
			o.Items = append(o.Items, board.OrderItem{
				ID:        uuid.New(),
				OrderID:   o.ID,
				DishName:  dish,
				Quantity:  1,
				Status:    status,
				CreatedAt: created,
				UpdatedAt: created,
			})
			o.Total += 12.50
		}
		s.orders[o.ID] = o
	}
}

// ActiveOrders implements board.OrderSource, returning every non-terminal
// order.
func (s *DemoOrderService) ActiveOrders(ctx context.Context) ([]board.Order, error) {
	return s.activeOrders(ctx, nil)
}

func (s *DemoOrderService) activeOrders(ctx context.Context, statuses []string) ([]board.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracked := make(map[string]struct{}, len(statuses))
	for _, status := range statuses {
		tracked[status] = struct{}{}
	}

	result := make([]board.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if len(tracked) > 0 {
			if _, ok := tracked[o.Status]; !ok {
				continue
			}
		} else if orderstatus.IsTerminal(o.Status) {
			continue
		}
		result = append(result, *o.Clone())
	}
	return result, nil
}

// SetOrderStatus implements board.StatusGateway.
func (s *DemoOrderService) SetOrderStatus(ctx context.Context, orderID board.OrderID, status string) error {
	if orderstatus.ByName(status) == nil {
		return fmt.Errorf("unknown order status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s not found", orderID)
	}
	o.Status = status
	o.UpdatedAt = s.clock()
	return nil
}

// SetItemStatus implements board.StatusGateway.
func (s *DemoOrderService) SetItemStatus(ctx context.Context, orderID board.OrderID, itemID board.OrderItemID, status string) error {
	if itemstatus.ByName(status) == nil {
		return fmt.Errorf("unknown item status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s not found", orderID)
	}
	item := o.Item(itemID)
	if item == nil {
		return fmt.Errorf("item %s not found on order %s", itemID, orderID)
	}
	now := s.clock()
	item.Status = status
	item.UpdatedAt = now
	o.UpdatedAt = now
	return nil
}
