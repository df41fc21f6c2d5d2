package pos

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// NotifyRequest is the payload the kitchen service accepts for a new batch.
type NotifyRequest struct {
	Items     []DeltaItem `json:"items"`
	TableName string      `json:"table_name,omitempty"`
	Priority  string      `json:"priority,omitempty"`
	Source    string      `json:"source,omitempty"`
}

// HistoryEntry mirrors one entry of the kitchen history feed for an order.
type HistoryEntry struct {
	OrderID      uuid.UUID `json:"order_id"`
	BatchID      uuid.UUID `json:"batch_id"`
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	MenuItemName string    `json:"menu_item_name,omitempty"`
	Stage        string    `json:"stage"`
	Qty          int       `json:"qty"`
	By           string    `json:"by,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// KitchenData is the kitchen-service surface the POS handler and the progress
// cache depend on.
type KitchenData interface {
	ListAllProgress(ctx context.Context) ([]ProgressRecord, error)
	ListProgress(ctx context.Context, orderID uuid.UUID) ([]ProgressRecord, error)
	NotifyItems(ctx context.Context, orderID uuid.UUID, req NotifyRequest) error
	ListHistory(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error)
}

// KitchenDataAccess wraps the low-level kitchen service API.
type KitchenDataAccess struct {
	client *aqm.ServiceClient
}

func NewKitchenDataAccess(client *aqm.ServiceClient) *KitchenDataAccess {
	return &KitchenDataAccess{client: client}
}

func (da *KitchenDataAccess) ListAllProgress(ctx context.Context) ([]ProgressRecord, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("kitchen client not configured")
	}

	resp, err := da.client.List(ctx, "progress")
	if err != nil {
		return nil, err
	}

	var records []ProgressRecord
	if err := decodeDataField(resp, "progress", &records); err != nil {
		return nil, err
	}

	return records, nil
}

func (da *KitchenDataAccess) ListProgress(ctx context.Context, orderID uuid.UUID) ([]ProgressRecord, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("kitchen client not configured")
	}
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("missing order id")
	}

	path := fmt.Sprintf("/orders/%s/progress", orderID.String())
	resp, err := da.client.Request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var records []ProgressRecord
	if err := decodeDataField(resp, "progress", &records); err != nil {
		return nil, err
	}

	return records, nil
}

func (da *KitchenDataAccess) NotifyItems(ctx context.Context, orderID uuid.UUID, req NotifyRequest) error {
	if da == nil || da.client == nil {
		return fmt.Errorf("kitchen client not configured")
	}
	if orderID == uuid.Nil {
		return fmt.Errorf("missing order id")
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("nothing to notify")
	}

	path := fmt.Sprintf("/orders/%s/notify", orderID.String())
	if _, err := da.client.Request(ctx, "POST", path, req); err != nil {
		return err
	}

	return nil
}

func (da *KitchenDataAccess) ListHistory(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error) {
	if da == nil || da.client == nil {
		return nil, fmt.Errorf("kitchen client not configured")
	}
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("missing order id")
	}

	path := fmt.Sprintf("/orders/%s/history", orderID.String())
	resp, err := da.client.Request(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var entries []HistoryEntry
	if err := decodeDataField(resp, "history", &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
