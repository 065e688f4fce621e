package board

import (
	"context"
	"sync"

	"github.com/appetiteclub/expedite/pkg/event"
)

// MockOrderSource is a test mock for OrderSource
type MockOrderSource struct {
	mu               sync.Mutex
	orders           []Order
	err              error
	calls            int
	ActiveOrdersFunc func(ctx context.Context) ([]Order, error)
}

func NewMockOrderSource() *MockOrderSource {
	return &MockOrderSource{}
}

func (m *MockOrderSource) ActiveOrders(ctx context.Context) ([]Order, error) {
	if m.ActiveOrdersFunc != nil {
		return m.ActiveOrdersFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	result := make([]Order, len(m.orders))
	copy(result, m.orders)
	return result, nil
}

// SetOrders replaces the orders the next fetch returns
func (m *MockOrderSource) SetOrders(orders []Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = orders
	m.err = nil
}

// Fail makes the next fetches return err
func (m *MockOrderSource) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockOrderSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockStatusGateway is a test mock for StatusGateway
type MockStatusGateway struct {
	mu                 sync.Mutex
	OrderCalls         []OrderStatusCall
	ItemCalls          []ItemStatusCall
	SetOrderStatusFunc func(ctx context.Context, orderID OrderID, status string) error
	SetItemStatusFunc  func(ctx context.Context, orderID OrderID, itemID OrderItemID, status string) error
}

type OrderStatusCall struct {
	OrderID OrderID
	Status  string
}

type ItemStatusCall struct {
	OrderID OrderID
	ItemID  OrderItemID
	Status  string
}

func NewMockStatusGateway() *MockStatusGateway {
	return &MockStatusGateway{}
}

func (m *MockStatusGateway) SetOrderStatus(ctx context.Context, orderID OrderID, status string) error {
	if m.SetOrderStatusFunc != nil {
		return m.SetOrderStatusFunc(ctx, orderID, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderCalls = append(m.OrderCalls, OrderStatusCall{OrderID: orderID, Status: status})
	return nil
}

func (m *MockStatusGateway) SetItemStatus(ctx context.Context, orderID OrderID, itemID OrderItemID, status string) error {
	if m.SetItemStatusFunc != nil {
		return m.SetItemStatusFunc(ctx, orderID, itemID, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemCalls = append(m.ItemCalls, ItemStatusCall{OrderID: orderID, ItemID: itemID, Status: status})
	return nil
}

// MockCuePlayer is a test mock for CuePlayer
type MockCuePlayer struct {
	mu       sync.Mutex
	Played   []event.CueEvent
	PlayFunc func(ctx context.Context, evt event.CueEvent) error
}

func NewMockCuePlayer() *MockCuePlayer {
	return &MockCuePlayer{}
}

func (m *MockCuePlayer) Play(ctx context.Context, evt event.CueEvent) error {
	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, evt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Played = append(m.Played, evt)
	return nil
}

func (m *MockCuePlayer) PlayedCues() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cues := make([]string, len(m.Played))
	for i, evt := range m.Played {
		cues[i] = evt.Cue
	}
	return cues
}
