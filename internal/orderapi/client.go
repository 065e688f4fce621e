package orderapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/expedite/internal/board"
	"github.com/google/uuid"
)

// orderResource mirrors the aggregate returned by the order service.
type orderResource struct {
	ID           string              `json:"id"`
	Number       string              `json:"number"`
	OrderType    string              `json:"order_type"`
	Status       string              `json:"status"`
	CustomerName string              `json:"customer_name"`
	TableNumber  string              `json:"table_number"`
	Total        float64             `json:"total"`
	Items        []orderItemResource `json:"items"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// orderItemResource represents a single item inside an order.
type orderItemResource struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	DishName  string    `json:"dish_name"`
	Quantity  int       `json:"quantity"`
	Notes     string    `json:"notes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type statusChangeRequest struct {
	Status string `json:"status"`
}

// OrderDataAccess centralizes decoding of order service responses and is
// the only path through which the boards read or mutate orders.
type OrderDataAccess struct {
	client   *apt.ServiceClient
	statuses []string
	logger   apt.Logger
}

// NewOrderDataAccess builds a data access scoped to a status filter; each
// board constructs its own with the statuses it tracks.
func NewOrderDataAccess(client *apt.ServiceClient, statuses []string, logger apt.Logger) *OrderDataAccess {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &OrderDataAccess{client: client, statuses: statuses, logger: logger}
}

// ActiveOrders implements board.OrderSource.
func (da *OrderDataAccess) ActiveOrders(ctx context.Context) ([]board.Order, error) {
	if da == nil || da.client == nil {
		return nil, errors.New("order client not configured")
	}

	path := "/orders"
	if len(da.statuses) > 0 {
		path = fmt.Sprintf("/orders?status=%s", url.QueryEscape(strings.Join(da.statuses, ",")))
	}
	resp, err := da.client.Request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var resources []orderResource
	if err := decodeSuccessResponse(resp, &resources); err != nil {
		return nil, err
	}

	orders := make([]board.Order, 0, len(resources))
	for i := range resources {
		o, err := mapOrder(&resources[i])
		if err != nil {
			da.logger.Debug("skipping malformed order", "order_id", resources[i].ID, "error", err)
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// SetOrderStatus implements board.StatusGateway.
func (da *OrderDataAccess) SetOrderStatus(ctx context.Context, orderID board.OrderID, status string) error {
	if da == nil || da.client == nil {
		return errors.New("order client not configured")
	}

	path := fmt.Sprintf("/orders/%s/status", orderID)
	_, err := da.client.Request(ctx, "PATCH", path, statusChangeRequest{Status: status})
	return err
}

// SetItemStatus implements board.StatusGateway.
func (da *OrderDataAccess) SetItemStatus(ctx context.Context, orderID board.OrderID, itemID board.OrderItemID, status string) error {
	if da == nil || da.client == nil {
		return errors.New("order client not configured")
	}

	path := fmt.Sprintf("/orders/%s/items/%s/status", orderID, itemID)
	_, err := da.client.Request(ctx, "PATCH", path, statusChangeRequest{Status: status})
	return err
}

func mapOrder(res *orderResource) (board.Order, error) {
	id, err := uuid.Parse(res.ID)
	if err != nil {
		return board.Order{}, fmt.Errorf("invalid order id %q", res.ID)
	}

	o := board.Order{
		ID:           id,
		Number:       res.Number,
		Kind:         res.OrderType,
		Status:       res.Status,
		CustomerName: res.CustomerName,
		TableNumber:  res.TableNumber,
		Total:        res.Total,
		CreatedAt:    res.CreatedAt,
		UpdatedAt:    res.UpdatedAt,
		Items:        make([]board.OrderItem, 0, len(res.Items)),
	}

	for i := range res.Items {
		item := &res.Items[i]
		itemID, err := uuid.Parse(item.ID)
		if err != nil {
			return board.Order{}, fmt.Errorf("invalid item id %q", item.ID)
		}
		o.Items = append(o.Items, board.OrderItem{
			ID:        itemID,
			OrderID:   id,
			DishName:  item.DishName,
			Quantity:  item.Quantity,
			Notes:     item.Notes,
			Status:    item.Status,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		})
	}
	return o, nil
}

// decodeSuccessResponse copies the dynamic response payload into dest.
func decodeSuccessResponse(resp *apt.SuccessResponse, dest interface{}) error {
	if resp == nil {
		return errors.New("nil success response")
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return err
	}

	return nil
}
