package event

import "time"

const (
	KitchenProgressTopic = "kitchen.progress"

	EventKitchenProgressUpdated = "kitchen.progress.updated"
	EventKitchenItemsVoided     = "kitchen.items.voided"
	EventKitchenBatchCreated    = "kitchen.batch.created"
)

// Actor values carried in the By field of kitchen events.
const (
	ActorKitchen = "kitchen"
	ActorCashier = "cashier"
	ActorSystem  = "system"
)

type KitchenProgressEventMetadata struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
	BatchID    string    `json:"batch_id,omitempty"`
	MenuItemID string    `json:"menu_item_id,omitempty"`

	// Denormalized data for display (POS and kitchen boards)
	MenuItemName string `json:"menu_item_name,omitempty"`
	TableNumber  string `json:"table_number,omitempty"`
}

// KitchenProgressUpdatedEvent carries the authoritative per-batch counters for
// a menu item. Counters are cumulative; the kitchen service never decreases
// notified for a live batch.
type KitchenProgressUpdatedEvent struct {
	KitchenProgressEventMetadata
	Notified  int `json:"notified"`
	Preparing int `json:"preparing"`
	Ready     int `json:"ready"`
	Served    int `json:"served"`
}

// KitchenItemsVoidedEvent signals that units were voided after being notified.
// By identifies which side initiated the void.
type KitchenItemsVoidedEvent struct {
	KitchenProgressEventMetadata
	OrderItemID string `json:"order_item_id"`
	Qty         int    `json:"qty"`
	Reason      string `json:"reason,omitempty"`
	By          string `json:"by"`
}

type BatchItem struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// KitchenBatchCreatedEvent announces a new batch accepted by the kitchen.
type KitchenBatchCreatedEvent struct {
	KitchenProgressEventMetadata
	Items []BatchItem `json:"items"`
}
