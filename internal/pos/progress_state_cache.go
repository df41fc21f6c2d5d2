package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/pkg/event"
)

// ProgressFetcher provides the HTTP path used to warm the cache and to
// refresh an order's records after a realtime event.
type ProgressFetcher interface {
	ListAllProgress(ctx context.Context) ([]ProgressRecord, error)
	ListProgress(ctx context.Context, orderID uuid.UUID) ([]ProgressRecord, error)
}

// ProgressStateCache maintains an in-memory view of kitchen progress records,
// indexed by order. Server-pushed counters are treated as ground truth: live
// events trigger a refetch of the affected order rather than a payload merge,
// while startup warming replays the persistent event stream.
type ProgressStateCache struct {
	mu sync.RWMutex
	// records indexed by order/batch/menu-item composite key
	records map[string]*ProgressRecord
	// index by order id -> record keys
	byOrder map[uuid.UUID][]string

	stream  events.StreamConsumer // for event replay on startup
	fetcher ProgressFetcher       // fallback and refresh path
	logger  aqm.Logger
}

// NewProgressStateCache creates a new progress cache.
func NewProgressStateCache(stream events.StreamConsumer, fetcher ProgressFetcher, logger aqm.Logger) *ProgressStateCache {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &ProgressStateCache{
		records: make(map[string]*ProgressRecord),
		byOrder: make(map[uuid.UUID][]string),
		stream:  stream,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Warm loads progress records using event replay from the stream, falling
// back to an HTTP fetch from the kitchen service when the stream is
// unavailable.
func (c *ProgressStateCache) Warm(ctx context.Context) error {
	if c.stream != nil {
		if err := c.warmFromStream(ctx); err != nil {
			c.logger.Info("stream replay failed, falling back to HTTP", "error", err)
		} else {
			return nil
		}
	}

	if c.fetcher == nil {
		c.logger.Info("neither stream nor kitchen fetcher configured, cache remains empty")
		return nil
	}

	return c.warmFromHTTP(ctx)
}

func (c *ProgressStateCache) warmFromStream(ctx context.Context) error {
	c.logger.Info("warming progress cache from event stream")

	messages, err := c.stream.Fetch(ctx, 10000)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, msg := range messages {
		c.applyEventLocked(msg.Data)
	}

	c.logger.Info("progress cache warmed from stream", "records", len(c.records))
	return nil
}

func (c *ProgressStateCache) warmFromHTTP(ctx context.Context) error {
	c.logger.Info("warming progress cache from kitchen HTTP API")

	records, err := c.fetcher.ListAllProgress(ctx)
	if err != nil {
		c.logger.Error("failed to warm progress cache from HTTP", "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range records {
		c.setLocked(&records[i])
	}

	c.logger.Info("progress cache warmed from HTTP", "count", len(records))
	return nil
}

// applyEventLocked processes a single replayed event. Must be called with
// c.mu locked. Live events never reach this path; subscribers refetch instead.
func (c *ProgressStateCache) applyEventLocked(data []byte) {
	var baseEvent struct {
		EventType string `json:"event_type"`
	}

	if err := json.Unmarshal(data, &baseEvent); err != nil {
		c.logger.Error("failed to unmarshal event type", "error", err)
		return
	}

	switch baseEvent.EventType {
	case event.EventKitchenProgressUpdated:
		c.handleProgressUpdatedLocked(data)
	case event.EventKitchenBatchCreated:
		c.handleBatchCreatedLocked(data)
	case event.EventKitchenItemsVoided:
		c.handleItemsVoidedLocked(data)
	default:
		// Silently ignore unknown event types (forward compatibility)
		return
	}
}

func (c *ProgressStateCache) handleProgressUpdatedLocked(data []byte) {
	var evt event.KitchenProgressUpdatedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		c.logger.Error("failed to unmarshal progress.updated event", "error", err)
		return
	}

	orderID, batchID, menuItemID, err := parseProgressIDs(evt.OrderID, evt.BatchID, evt.MenuItemID)
	if err != nil {
		c.logger.Error("progress.updated event carries invalid ids", "error", err)
		return
	}

	rec := &ProgressRecord{
		OrderID:      orderID,
		BatchID:      batchID,
		MenuItemID:   menuItemID,
		MenuItemName: evt.MenuItemName,
		Notified:     evt.Notified,
		Preparing:    evt.Preparing,
		Ready:        evt.Ready,
		Served:       evt.Served,
		UpdatedAt:    evt.OccurredAt,
	}

	if evt.Notified < evt.Preparing+evt.Ready+evt.Served {
		// Out-of-order or inconsistent server counters. The cancellable
		// computation clamps to zero; nothing else to do here.
		c.logger.Debug("progress counters violate notified >= preparing+ready+served",
			"order_id", evt.OrderID, "menu_item_id", evt.MenuItemID)
	}

	c.setLocked(rec)
}

func (c *ProgressStateCache) handleBatchCreatedLocked(data []byte) {
	var evt event.KitchenBatchCreatedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		c.logger.Error("failed to unmarshal batch.created event", "error", err)
		return
	}

	for _, item := range evt.Items {
		orderID, batchID, menuItemID, err := parseProgressIDs(evt.OrderID, evt.BatchID, item.MenuItemID)
		if err != nil {
			c.logger.Error("batch.created event carries invalid ids", "error", err)
			continue
		}

		c.setLocked(&ProgressRecord{
			OrderID:    orderID,
			BatchID:    batchID,
			MenuItemID: menuItemID,
			Notified:   item.Quantity,
			UpdatedAt:  evt.OccurredAt,
		})
	}
}

// handleItemsVoidedLocked reduces notified counts during replay. Voided units
// are subtracted from the order's records for the menu item, newest batch
// first, mirroring how the kitchen service applies voids.
func (c *ProgressStateCache) handleItemsVoidedLocked(data []byte) {
	var evt event.KitchenItemsVoidedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		c.logger.Error("failed to unmarshal items.voided event", "error", err)
		return
	}

	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		c.logger.Error("items.voided event carries invalid order id", "error", err)
		return
	}
	menuItemID, err := uuid.Parse(evt.MenuItemID)
	if err != nil {
		c.logger.Error("items.voided event carries invalid menu item id", "error", err)
		return
	}

	remaining := evt.Qty
	keys := c.byOrder[orderID]
	for i := len(keys) - 1; i >= 0 && remaining > 0; i-- {
		rec := c.records[keys[i]]
		if rec == nil || rec.MenuItemID != menuItemID {
			continue
		}
		free := rec.Cancellable()
		if free <= 0 {
			continue
		}
		take := free
		if take > remaining {
			take = remaining
		}
		rec.Notified -= take
		rec.UpdatedAt = evt.OccurredAt
		remaining -= take
	}

	if remaining > 0 {
		c.logger.Debug("void exceeded cancellable units in cache",
			"order_id", evt.OrderID, "menu_item_id", evt.MenuItemID, "excess", remaining)
	}
}

// Set updates or adds a record to the cache.
func (c *ProgressStateCache) Set(rec *ProgressRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(rec)
}

func (c *ProgressStateCache) setLocked(rec *ProgressRecord) {
	if rec == nil {
		return
	}

	key := progressKey(rec.OrderID, rec.BatchID, rec.MenuItemID)

	if _, exists := c.records[key]; !exists {
		c.byOrder[rec.OrderID] = append(c.byOrder[rec.OrderID], key)
	}
	c.records[key] = rec
}

// GetByOrder returns copies of all cached records for an order, in insertion
// (batch) order.
func (c *ProgressStateCache) GetByOrder(orderID uuid.UUID) []ProgressRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := c.byOrder[orderID]
	result := make([]ProgressRecord, 0, len(keys))
	for _, key := range keys {
		if rec := c.records[key]; rec != nil {
			result = append(result, *rec)
		}
	}
	return result
}

// InvalidateOrder drops all cached records for an order. The next Refresh or
// lookup repopulates from server truth.
func (c *ProgressStateCache) InvalidateOrder(orderID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropOrderLocked(orderID)
}

func (c *ProgressStateCache) dropOrderLocked(orderID uuid.UUID) {
	for _, key := range c.byOrder[orderID] {
		delete(c.records, key)
	}
	delete(c.byOrder, orderID)
}

// Refresh replaces the cached records for an order with the kitchen service's
// current truth. On fetch failure the cached records are kept untouched, so
// callers keep seeing the last known counters instead of an empty view that
// would make everything look unsent.
func (c *ProgressStateCache) Refresh(ctx context.Context, orderID uuid.UUID) error {
	if c.fetcher == nil {
		return nil
	}

	records, err := c.fetcher.ListProgress(ctx, orderID)
	if err != nil {
		return fmt.Errorf("cannot refresh progress for order %s: %w", orderID.String(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropOrderLocked(orderID)
	for i := range records {
		c.setLocked(&records[i])
	}

	return nil
}

func progressKey(orderID, batchID, menuItemID uuid.UUID) string {
	return orderID.String() + "/" + batchID.String() + "/" + menuItemID.String()
}

func parseProgressIDs(orderID, batchID, menuItemID string) (uuid.UUID, uuid.UUID, uuid.UUID, error) {
	oid, err := uuid.Parse(orderID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, fmt.Errorf("invalid order id: %w", err)
	}
	bid, err := uuid.Parse(batchID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, fmt.Errorf("invalid batch id: %w", err)
	}
	mid, err := uuid.Parse(menuItemID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, fmt.Errorf("invalid menu item id: %w", err)
	}
	return oid, bid, mid, nil
}
