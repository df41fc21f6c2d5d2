package pos

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// OrderSummary mirrors the aggregate returned by the order service.
type OrderSummary struct {
	ID          uuid.UUID `json:"id"`
	TableID     uuid.UUID `json:"table_id"`
	TableNumber string    `json:"table_number,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderData is the order-service surface the POS handler depends on. The
// backend owns quantity storage; this side only reads lines and requests
// mutations.
type OrderData interface {
	ListActiveOrders(ctx context.Context) ([]OrderSummary, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderSummary, error)
	ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error)
	GetOrderLine(ctx context.Context, itemID uuid.UUID) (*OrderLine, error)
	CreateOrderLine(ctx context.Context, orderID, menuItemID uuid.UUID, qty int) (*OrderLine, error)
	UpdateLineQuantity(ctx context.Context, itemID uuid.UUID, qty int) (*OrderLine, error)
	CancelLinePartial(ctx context.Context, itemID uuid.UUID, qty int, reason string) error
	CancelLines(ctx context.Context, itemIDs []uuid.UUID, reason string) error
}

// OrderDataAccess wraps the low-level order service API.
type OrderDataAccess struct {
	client *aqm.ServiceClient
}

func NewOrderDataAccess(client *aqm.ServiceClient) *OrderDataAccess {
	return &OrderDataAccess{client: client}
}

func (da *OrderDataAccess) ListActiveOrders(ctx context.Context) ([]OrderSummary, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}

	resp, err := da.client.Request(ctx, "GET", "/orders?status=open", nil)
	if err != nil {
		return nil, err
	}

	var orders []OrderSummary
	if err := decodeData(resp, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (da *OrderDataAccess) GetOrder(ctx context.Context, id uuid.UUID) (*OrderSummary, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}

	resp, err := da.client.Get(ctx, "orders", id.String())
	if err != nil {
		return nil, err
	}

	var order OrderSummary
	if err := decodeData(resp, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

func (da *OrderDataAccess) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("missing order id")
	}

	path := fmt.Sprintf("/orders/%s/items", orderID.String())
	resp, err := da.client.Request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var lines []OrderLine
	if err := decodeData(resp, &lines); err != nil {
		return nil, err
	}

	return lines, nil
}

func (da *OrderDataAccess) GetOrderLine(ctx context.Context, itemID uuid.UUID) (*OrderLine, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}
	if itemID == uuid.Nil {
		return nil, fmt.Errorf("missing item id")
	}

	path := fmt.Sprintf("/order-items/%s", itemID.String())
	resp, err := da.client.Request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var line OrderLine
	if err := decodeData(resp, &line); err != nil {
		return nil, err
	}

	return &line, nil
}

func (da *OrderDataAccess) CreateOrderLine(ctx context.Context, orderID, menuItemID uuid.UUID, qty int) (*OrderLine, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}
	if orderID == uuid.Nil || menuItemID == uuid.Nil {
		return nil, fmt.Errorf("missing order or menu item id")
	}

	payload := map[string]interface{}{
		"menu_item_id": menuItemID.String(),
		"quantity":     qty,
	}

	path := fmt.Sprintf("/orders/%s/items", orderID.String())
	resp, err := da.client.Request(ctx, "POST", path, payload)
	if err != nil {
		return nil, err
	}

	var line OrderLine
	if err := decodeData(resp, &line); err != nil {
		return nil, err
	}

	return &line, nil
}

func (da *OrderDataAccess) UpdateLineQuantity(ctx context.Context, itemID uuid.UUID, qty int) (*OrderLine, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("order client not configured")
	}
	if itemID == uuid.Nil {
		return nil, fmt.Errorf("missing item id")
	}

	payload := map[string]interface{}{"quantity": qty}

	path := fmt.Sprintf("/order-items/%s/quantity", itemID.String())
	resp, err := da.client.Request(ctx, "PATCH", path, payload)
	if err != nil {
		return nil, err
	}

	var line OrderLine
	if err := decodeData(resp, &line); err != nil {
		return nil, err
	}

	return &line, nil
}

func (da *OrderDataAccess) CancelLinePartial(ctx context.Context, itemID uuid.UUID, qty int, reason string) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("order client not configured")
	}
	if itemID == uuid.Nil {
		return fmt.Errorf("missing item id")
	}

	payload := map[string]interface{}{
		"qty":    qty,
		"reason": reason,
	}

	path := fmt.Sprintf("/order-items/%s/cancel", itemID.String())
	if _, err := da.client.Request(ctx, "PATCH", path, payload); err != nil {
		return err
	}

	return nil
}

func (da *OrderDataAccess) CancelLines(ctx context.Context, itemIDs []uuid.UUID, reason string) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("order client not configured")
	}
	if len(itemIDs) == 0 {
		return fmt.Errorf("missing item ids")
	}

	ids := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		ids = append(ids, id.String())
	}

	payload := map[string]interface{}{
		"item_ids": ids,
		"reason":   reason,
	}

	if _, err := da.client.Request(ctx, "POST", "/order-items/cancel", payload); err != nil {
		return err
	}

	return nil
}
