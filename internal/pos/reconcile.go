package pos

import (
	"time"

	"github.com/google/uuid"
)

// ProgressRecord mirrors the per-batch counters the kitchen service keeps for
// a menu item within an order. All counters are cumulative. A menu item can
// appear in several records, one per batch sent to the kitchen.
type ProgressRecord struct {
	OrderID      uuid.UUID `json:"order_id"`
	BatchID      uuid.UUID `json:"batch_id"`
	MenuItemID   uuid.UUID `json:"menu_item_id"`
	MenuItemName string    `json:"menu_item_name,omitempty"`
	Notified     int       `json:"notified"`
	Preparing    int       `json:"preparing"`
	Ready        int       `json:"ready"`
	Served       int       `json:"served"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Cancellable returns the portion of this record's notified units the kitchen
// has not started working on. The result is clamped at zero, so a record that
// violates notified >= preparing+ready+served contributes nothing.
func (r ProgressRecord) Cancellable() int {
	c := nonNegative(r.Notified) - nonNegative(r.Preparing) - nonNegative(r.Ready) - nonNegative(r.Served)
	if c < 0 {
		return 0
	}
	return c
}

// OrderLine is the cashier-side view of an order item row. Quantity is the
// total units currently on the bill for the menu item.
type OrderLine struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	DishName   string    `json:"dish_name"`
	Quantity   int       `json:"quantity"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DeltaItem is one entry of the notify payload: units of a menu item that have
// never been sent to the kitchen.
type DeltaItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Delta      int       `json:"delta"`
}

// NotifiedByItem sums the notified counters per menu item across batches. The
// total is monotonically non-decreasing as long as the kitchen never lowers a
// batch counter.
func NotifiedByItem(records []ProgressRecord) map[uuid.UUID]int {
	result := make(map[uuid.UUID]int, len(records))
	for _, rec := range records {
		result[rec.MenuItemID] += nonNegative(rec.Notified)
	}
	return result
}

// CancellableByItem sums, per menu item, the notified units that have not yet
// entered preparation. Always >= 0 for every item.
func CancellableByItem(records []ProgressRecord) map[uuid.UUID]int {
	result := make(map[uuid.UUID]int, len(records))
	for _, rec := range records {
		result[rec.MenuItemID] += rec.Cancellable()
	}
	return result
}

// PendingDeltas computes which lines carry unsent quantity. Cancelled lines
// and lines whose quantity is fully covered by notified counts are excluded.
// The result order follows the input line order.
func PendingDeltas(lines []OrderLine, notified map[uuid.UUID]int) []DeltaItem {
	var result []DeltaItem
	for _, line := range lines {
		if line.Status == "cancelled" {
			continue
		}
		delta := line.Quantity - notified[line.MenuItemID]
		if delta <= 0 {
			continue
		}
		result = append(result, DeltaItem{MenuItemID: line.MenuItemID, Delta: delta})
	}
	return result
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
