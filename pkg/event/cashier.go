package event

import "time"

const (
	CashierActionsTopic = "cashier.actions"

	EventCashierItemsNotified  = "cashier.items.notified"
	EventCashierItemsCancelled = "cashier.items.cancelled"
)

type NotifiedItem struct {
	MenuItemID string `json:"menu_item_id"`
	Delta      int    `json:"delta"`
}

// CashierItemsNotifiedEvent is an informational broadcast paired with the
// kitchen notify call. It is not a substitute for the REST request.
type CashierItemsNotifiedEvent struct {
	EventType  string         `json:"event_type"`
	OccurredAt time.Time      `json:"occurred_at"`
	OrderID    string         `json:"order_id"`
	TableName  string         `json:"table_name,omitempty"`
	Priority   string         `json:"priority,omitempty"`
	Source     string         `json:"source,omitempty"`
	Items      []NotifiedItem `json:"items"`
}

// CashierItemsCancelledEvent is broadcast after a cancellation request was
// accepted by the order service, so kitchen displays can react.
type CashierItemsCancelledEvent struct {
	EventType    string    `json:"event_type"`
	OccurredAt   time.Time `json:"occurred_at"`
	OrderID      string    `json:"order_id"`
	OrderItemIDs []string  `json:"order_item_ids"`
	Qty          int       `json:"qty,omitempty"`
	Reason       string    `json:"reason"`
	By           string    `json:"by"`
}
