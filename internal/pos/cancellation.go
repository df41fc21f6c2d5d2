package pos

import (
	"context"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// CancellationRecord is the audit trail entry kept for every accepted
// cancellation request. Qty zero means the entire row was cancelled.
type CancellationRecord struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	OrderID     uuid.UUID `json:"order_id" bson:"order_id"`
	OrderItemID uuid.UUID `json:"order_item_id" bson:"order_item_id"`
	MenuItemID  uuid.UUID `json:"menu_item_id,omitempty" bson:"menu_item_id,omitempty"`
	DishName    string    `json:"dish_name,omitempty" bson:"dish_name,omitempty"`
	Qty         int       `json:"qty" bson:"qty"`
	Reason      string    `json:"reason" bson:"reason"`
	By          string    `json:"by" bson:"by"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

func (c *CancellationRecord) GetID() uuid.UUID {
	return c.ID
}

func (c *CancellationRecord) ResourceType() string {
	return "cancellation"
}

func (c *CancellationRecord) SetID(id uuid.UUID) {
	c.ID = id
}

func NewCancellationRecord() *CancellationRecord {
	return &CancellationRecord{
		ID: aqm.GenerateNewID(),
	}
}

func (c *CancellationRecord) EnsureID() {
	if c.ID == uuid.Nil {
		c.ID = aqm.GenerateNewID()
	}
}

func (c *CancellationRecord) BeforeCreate() {
	c.EnsureID()
	c.CreatedAt = time.Now()
}

// CancellationAudit persists cancellation records. Failures are non-fatal for
// the cancellation itself; the order service already applied it.
type CancellationAudit interface {
	Record(ctx context.Context, rec *CancellationRecord) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*CancellationRecord, error)
}
