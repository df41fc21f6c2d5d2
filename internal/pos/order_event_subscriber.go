package pos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/pkg/event"
)

// OrderEventSubscriber listens to orders.lifecycle events. Every event is
// translated into a scoped invalidation plus a client broadcast; payloads are
// never merged into local state.
type OrderEventSubscriber struct {
	subscriber events.Subscriber
	cache      *ProgressStateCache
	hub        Broadcaster
	logger     aqm.Logger
}

// NewOrderEventSubscriber creates a new subscriber for order lifecycle events.
func NewOrderEventSubscriber(subscriber events.Subscriber, cache *ProgressStateCache, hub Broadcaster, logger aqm.Logger) *OrderEventSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OrderEventSubscriber{
		subscriber: subscriber,
		cache:      cache,
		hub:        hub,
		logger:     logger,
	}
}

// Start begins listening to order lifecycle events.
func (s *OrderEventSubscriber) Start(ctx context.Context) error {
	if s.subscriber == nil {
		s.logger.Info("NATS subscriber not configured, skipping order lifecycle subscription")
		return nil
	}

	s.logger.Info("subscribing to orders.lifecycle topic")
	if err := s.subscriber.Subscribe(ctx, event.OrderLifecycleTopic, s.handleEvent); err != nil {
		return fmt.Errorf("failed to subscribe to orders.lifecycle: %w", err)
	}

	s.logger.Info("order event subscriber started")
	return nil
}

// Stop is a no-op for lifecycle compatibility.
func (s *OrderEventSubscriber) Stop(ctx context.Context) error {
	return nil
}

func (s *OrderEventSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var baseEvent struct {
		EventType string `json:"event_type"`
	}

	if err := json.Unmarshal(msg, &baseEvent); err != nil {
		s.logger.Error("failed to unmarshal event type", "error", err)
		return nil
	}

	switch baseEvent.EventType {
	case event.EventOrderChanged, event.EventOrderMetaUpdated:
		return s.handleOrderScoped(ctx, msg)
	case event.EventOrderMerged, event.EventOrderSplit:
		return s.handleReshape(ctx, msg)
	case event.EventOrderItemNoteUpdated:
		return s.handleNoteUpdated(msg)
	default:
		s.logger.Debug("ignoring unknown event type", "event_type", baseEvent.EventType)
		return nil
	}
}

func (s *OrderEventSubscriber) handleOrderScoped(ctx context.Context, msg []byte) error {
	var evt event.OrderLifecycleEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Error("failed to unmarshal order lifecycle event", "error", err)
		return nil
	}

	s.refreshOrder(ctx, evt.OrderID)
	s.broadcast(evt.EventType, msg)

	s.logger.Debug("order changed", "event_type", evt.EventType, "order_id", evt.OrderID)
	return nil
}

// handleReshape covers merges and splits, which touch two orders at once.
func (s *OrderEventSubscriber) handleReshape(ctx context.Context, msg []byte) error {
	var evt event.OrderLifecycleEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Error("failed to unmarshal order reshape event", "error", err)
		return nil
	}

	s.refreshOrder(ctx, evt.OrderID)
	if evt.SourceOrderID != "" {
		s.refreshOrder(ctx, evt.SourceOrderID)
	}
	s.broadcast(evt.EventType, msg)

	s.logger.Info("order reshaped", "event_type", evt.EventType,
		"order_id", evt.OrderID, "source_order_id", evt.SourceOrderID)
	return nil
}

// handleNoteUpdated only forwards the event: note changes carry no progress
// impact, clients refetch the lines themselves.
func (s *OrderEventSubscriber) handleNoteUpdated(msg []byte) error {
	var evt event.OrderItemNoteUpdatedEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Error("failed to unmarshal note updated event", "error", err)
		return nil
	}

	s.broadcast(evt.EventType, msg)

	s.logger.Debug("order item note updated", "order_item_id", evt.OrderItemID)
	return nil
}

func (s *OrderEventSubscriber) refreshOrder(ctx context.Context, rawOrderID string) {
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		s.logger.Error("order event carries invalid order id", "error", err)
		return
	}

	if err := s.cache.Refresh(ctx, orderID); err != nil {
		s.logger.Error("cannot refresh progress after order event", "error", err, "order_id", rawOrderID)
	}
}

func (s *OrderEventSubscriber) broadcast(eventType string, msg []byte) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(eventType, json.RawMessage(msg))
}
