package event

import "time"

const (
	OrderLifecycleTopic = "orders.lifecycle"

	EventOrderChanged         = "order.changed"
	EventOrderMerged          = "order.merged"
	EventOrderSplit           = "order.split"
	EventOrderMetaUpdated     = "order.meta_updated"
	EventOrderItemNoteUpdated = "order.item.note_updated"
)

// OrderLifecycleEvent is published by the order service whenever an order
// changes shape. Consumers are expected to refetch rather than patch local
// state from the payload.
type OrderLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
	// SourceOrderID identifies the order that was merged into or split from
	// OrderID, when applicable.
	SourceOrderID string `json:"source_order_id,omitempty"`
	TableID       string `json:"table_id,omitempty"`
	TableNumber   string `json:"table_number,omitempty"`
	By            string `json:"by,omitempty"`
}

// OrderItemNoteUpdatedEvent carries a note change on a single order item.
// Item-level detail is used for display only.
type OrderItemNoteUpdatedEvent struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	OrderID     string    `json:"order_id"`
	OrderItemID string    `json:"order_item_id"`
	Notes       string    `json:"notes,omitempty"`
}
