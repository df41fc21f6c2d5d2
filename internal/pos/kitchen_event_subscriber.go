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

// Broadcaster relays informational events to connected POS and kitchen
// display clients. Payloads are display-only; state always flows through a
// refetch.
type Broadcaster interface {
	Broadcast(eventType string, payload interface{})
}

// KitchenEventSubscriber listens to kitchen.progress events and keeps the
// progress cache and board aligned with the kitchen side.
type KitchenEventSubscriber struct {
	subscriber events.Subscriber
	cache      *ProgressStateCache
	board      *Board
	hub        Broadcaster
	logger     aqm.Logger
}

// NewKitchenEventSubscriber creates a new subscriber for kitchen progress events.
func NewKitchenEventSubscriber(subscriber events.Subscriber, cache *ProgressStateCache, board *Board, hub Broadcaster, logger aqm.Logger) *KitchenEventSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &KitchenEventSubscriber{
		subscriber: subscriber,
		cache:      cache,
		board:      board,
		hub:        hub,
		logger:     logger,
	}
}

// Start begins listening to kitchen progress events.
func (s *KitchenEventSubscriber) Start(ctx context.Context) error {
	if s.subscriber == nil {
		s.logger.Info("NATS subscriber not configured, skipping kitchen progress subscription")
		return nil
	}

	s.logger.Info("subscribing to kitchen.progress topic")
	if err := s.subscriber.Subscribe(ctx, event.KitchenProgressTopic, s.handleEvent); err != nil {
		return fmt.Errorf("failed to subscribe to kitchen.progress: %w", err)
	}

	s.logger.Info("kitchen event subscriber started")
	return nil
}

// Stop is a no-op for lifecycle compatibility.
func (s *KitchenEventSubscriber) Stop(ctx context.Context) error {
	return nil
}

func (s *KitchenEventSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var baseEvent struct {
		EventType string `json:"event_type"`
		OrderID   string `json:"order_id"`
	}

	if err := json.Unmarshal(msg, &baseEvent); err != nil {
		s.logger.Error("failed to unmarshal event type", "error", err)
		return nil
	}

	switch baseEvent.EventType {
	case event.EventKitchenProgressUpdated, event.EventKitchenBatchCreated:
		return s.handleProgressChanged(ctx, baseEvent.EventType, baseEvent.OrderID, msg)
	case event.EventKitchenItemsVoided:
		return s.handleItemsVoided(ctx, msg)
	default:
		s.logger.Debug("ignoring unknown event type", "event_type", baseEvent.EventType)
		return nil
	}
}

// handleProgressChanged refetches the order's progress rather than merging
// the payload, trading latency for divergence safety.
func (s *KitchenEventSubscriber) handleProgressChanged(ctx context.Context, eventType, rawOrderID string, msg []byte) error {
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		s.logger.Error("kitchen event carries invalid order id", "error", err, "event_type", eventType)
		return nil
	}

	if err := s.cache.Refresh(ctx, orderID); err != nil {
		s.logger.Error("cannot refresh progress after kitchen event", "error", err, "order_id", rawOrderID)
	}

	if s.hub != nil {
		s.hub.Broadcast(eventType, json.RawMessage(msg))
	}

	s.logger.Debug("kitchen progress changed", "event_type", eventType, "order_id", rawOrderID)
	return nil
}

// handleItemsVoided processes a kitchen-initiated void. Besides the refetch,
// the board's pending-notify flag is cleared for the order: the change did not
// originate from an unsent local edit.
func (s *KitchenEventSubscriber) handleItemsVoided(ctx context.Context, msg []byte) error {
	var evt event.KitchenItemsVoidedEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Error("failed to unmarshal items.voided event", "error", err)
		return nil
	}

	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		s.logger.Error("items.voided event carries invalid order id", "error", err)
		return nil
	}

	if err := s.cache.Refresh(ctx, orderID); err != nil {
		s.logger.Error("cannot refresh progress after void", "error", err, "order_id", evt.OrderID)
	}

	if evt.By != event.ActorCashier && s.board != nil {
		s.board.ClearPendingNotify(orderID)
	}

	if s.hub != nil {
		s.hub.Broadcast(event.EventKitchenItemsVoided, evt)
	}

	s.logger.Info("items voided", "order_id", evt.OrderID, "qty", evt.Qty, "by", evt.By)
	return nil
}
