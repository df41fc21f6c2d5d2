package pos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/comandaclub/comanda/pkg/event"
)

func (h *Handler) publishItemsNotified(ctx context.Context, orderID uuid.UUID, req NotifyRequest) {
	items := make([]event.NotifiedItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, event.NotifiedItem{
			MenuItemID: it.MenuItemID.String(),
			Delta:      it.Delta,
		})
	}

	evt := event.CashierItemsNotifiedEvent{
		EventType:  event.EventCashierItemsNotified,
		OccurredAt: time.Now(),
		OrderID:    orderID.String(),
		TableName:  req.TableName,
		Priority:   req.Priority,
		Source:     req.Source,
		Items:      items,
	}

	h.publishCashierEvent(ctx, evt.EventType, evt)
}

func (h *Handler) publishItemsCancelled(ctx context.Context, orderID uuid.UUID, itemIDs []uuid.UUID, qty int, reason string) {
	ids := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		ids = append(ids, id.String())
	}

	evt := event.CashierItemsCancelledEvent{
		EventType:    event.EventCashierItemsCancelled,
		OccurredAt:   time.Now(),
		OrderID:      orderID.String(),
		OrderItemIDs: ids,
		Qty:          qty,
		Reason:       reason,
		By:           event.ActorCashier,
	}

	h.publishCashierEvent(ctx, evt.EventType, evt)
}

func (h *Handler) publishCashierEvent(ctx context.Context, eventType string, evt interface{}) {
	if h.hub != nil {
		h.hub.Broadcast(eventType, evt)
	}

	if h.publisher == nil {
		return
	}

	eventBytes, _ := json.Marshal(evt)
	if err := h.publisher.Publish(ctx, event.CashierActionsTopic, eventBytes); err != nil {
		h.logger.Errorf("Failed to publish %s event: %v", eventType, err)
	}
}
