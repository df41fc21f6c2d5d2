package pos

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/pkg/event"
)

func TestOrderEventSubscriberStart(t *testing.T) {
	cache := NewProgressStateCache(nil, nil, aqm.NewNoopLogger())
	subscriber := NewMockSubscriber()

	sub := NewOrderEventSubscriber(subscriber, cache, nil, aqm.NewNoopLogger())
	if err := sub.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, ok := subscriber.Handlers[event.OrderLifecycleTopic]; !ok {
		t.Error("no handler registered for orders.lifecycle")
	}
}

func TestOrderEventSubscriberOrderChangedRefetches(t *testing.T) {
	orderID := uuid.New()

	refreshed := make([]uuid.UUID, 0)
	fetcher := NewMockKitchenData()
	fetcher.ListProgressFunc = func(ctx context.Context, id uuid.UUID) ([]ProgressRecord, error) {
		refreshed = append(refreshed, id)
		return nil, nil
	}
	cache := NewProgressStateCache(nil, fetcher, aqm.NewNoopLogger())

	subscriber := NewMockSubscriber()
	hub := NewMockBroadcaster()
	sub := NewOrderEventSubscriber(subscriber, cache, hub, aqm.NewNoopLogger())
	if err := sub.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	msg, _ := json.Marshal(event.OrderLifecycleEvent{
		EventType: event.EventOrderChanged,
		OrderID:   orderID.String(),
	})
	if err := subscriber.Deliver(context.Background(), event.OrderLifecycleTopic, msg); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if len(refreshed) != 1 || refreshed[0] != orderID {
		t.Errorf("refreshed orders = %v, want [%s]", refreshed, orderID)
	}
	if len(hub.Broadcasts) != 1 || hub.Broadcasts[0].EventType != event.EventOrderChanged {
		t.Errorf("broadcasts = %+v, want one order.changed", hub.Broadcasts)
	}
}

func TestOrderEventSubscriberMergeRefetchesBothOrders(t *testing.T) {
	targetID := uuid.New()
	sourceID := uuid.New()

	refreshed := make(map[uuid.UUID]bool)
	fetcher := NewMockKitchenData()
	fetcher.ListProgressFunc = func(ctx context.Context, id uuid.UUID) ([]ProgressRecord, error) {
		refreshed[id] = true
		return nil, nil
	}
	cache := NewProgressStateCache(nil, fetcher, aqm.NewNoopLogger())

	subscriber := NewMockSubscriber()
	sub := NewOrderEventSubscriber(subscriber, cache, nil, aqm.NewNoopLogger())
	if err := sub.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	msg, _ := json.Marshal(event.OrderLifecycleEvent{
		EventType:     event.EventOrderMerged,
		OrderID:       targetID.String(),
		SourceOrderID: sourceID.String(),
	})
	if err := subscriber.Deliver(context.Background(), event.OrderLifecycleTopic, msg); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if !refreshed[targetID] || !refreshed[sourceID] {
		t.Errorf("refreshed = %v, want both %s and %s", refreshed, targetID, sourceID)
	}
}

func TestOrderEventSubscriberNoteUpdatedOnlyBroadcasts(t *testing.T) {
	fetcher := NewMockKitchenData()
	refetched := false
	fetcher.ListProgressFunc = func(ctx context.Context, id uuid.UUID) ([]ProgressRecord, error) {
		refetched = true
		return nil, nil
	}
	cache := NewProgressStateCache(nil, fetcher, aqm.NewNoopLogger())

	subscriber := NewMockSubscriber()
	hub := NewMockBroadcaster()
	sub := NewOrderEventSubscriber(subscriber, cache, hub, aqm.NewNoopLogger())
	if err := sub.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	msg, _ := json.Marshal(event.OrderItemNoteUpdatedEvent{
		EventType:   event.EventOrderItemNoteUpdated,
		OrderID:     uuid.New().String(),
		OrderItemID: uuid.New().String(),
		Notes:       "no chili",
	})
	if err := subscriber.Deliver(context.Background(), event.OrderLifecycleTopic, msg); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if refetched {
		t.Error("note update triggered a progress refetch")
	}
	if len(hub.Broadcasts) != 1 || hub.Broadcasts[0].EventType != event.EventOrderItemNoteUpdated {
		t.Errorf("broadcasts = %+v, want one note_updated", hub.Broadcasts)
	}
}

func TestOrderEventSubscriberIgnoresMalformedEvents(t *testing.T) {
	cache := NewProgressStateCache(nil, nil, aqm.NewNoopLogger())
	subscriber := NewMockSubscriber()
	sub := NewOrderEventSubscriber(subscriber, cache, nil, aqm.NewNoopLogger())
	if err := sub.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	payloads := [][]byte{
		[]byte(`not json`),
		[]byte(`{"event_type":"order.archived"}`),
		[]byte(`{"event_type":"order.changed","order_id":"not-a-uuid"}`),
	}

	for _, payload := range payloads {
		if err := subscriber.Deliver(context.Background(), event.OrderLifecycleTopic, payload); err != nil {
			t.Errorf("Deliver(%s) error = %v, want nil", payload, err)
		}
	}
}
