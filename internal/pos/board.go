package pos

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CancelTarget describes a staged single-line cancellation awaiting a
// user-entered reason and quantity confirmation.
type CancelTarget struct {
	OrderItemID uuid.UUID `json:"order_item_id"`
	OrderID     uuid.UUID `json:"order_id"`
	MenuItemID  uuid.UUID `json:"menu_item_id"`
	DishName    string    `json:"dish_name"`
	MaxQty      int       `json:"max_qty"`
	StagedAt    time.Time `json:"staged_at"`
}

// Board holds the cashier-side transient state that is not owned by any
// backend service: pending-notify flags per order, staged cancel targets, and
// per-action in-flight guards. Everything here is rebuilt from scratch on
// restart; server truth always wins.
type Board struct {
	mu            sync.Mutex
	pendingNotify map[uuid.UUID]bool
	cancelTargets map[uuid.UUID]CancelTarget
	inflight      map[string]bool
}

func NewBoard() *Board {
	return &Board{
		pendingNotify: make(map[uuid.UUID]bool),
		cancelTargets: make(map[uuid.UUID]CancelTarget),
		inflight:      make(map[string]bool),
	}
}

// MarkPendingNotify records that the order has local edits not yet sent to the
// kitchen, so the notify affordance stays available even if the computed delta
// momentarily lags.
func (b *Board) MarkPendingNotify(orderID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pendingNotify[orderID] = true
}

func (b *Board) ClearPendingNotify(orderID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pendingNotify, orderID)
}

func (b *Board) HasPendingNotify(orderID uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pendingNotify[orderID]
}

// StageCancel stores a pending cancellation target, replacing any previous
// target for the same order item.
func (b *Board) StageCancel(target CancelTarget) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelTargets[target.OrderItemID] = target
}

// PeekCancel returns the staged target without removing it, so a failed
// confirmation leaves the flow open for retry.
func (b *Board) PeekCancel(orderItemID uuid.UUID) (CancelTarget, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	target, ok := b.cancelTargets[orderItemID]
	return target, ok
}

// TakeCancel removes and returns the staged target.
func (b *Board) TakeCancel(orderItemID uuid.UUID) (CancelTarget, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	target, ok := b.cancelTargets[orderItemID]
	if ok {
		delete(b.cancelTargets, orderItemID)
	}
	return target, ok
}

// Begin marks an action as in flight for the given scope. It returns false if
// the same action is already running, which is the only double-submission
// protection this side implements.
func (b *Board) Begin(action string, scope uuid.UUID) bool {
	key := actionKey(action, scope)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inflight[key] {
		return false
	}
	b.inflight[key] = true
	return true
}

// End releases the in-flight guard for the given action and scope.
func (b *Board) End(action string, scope uuid.UUID) {
	key := actionKey(action, scope)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inflight, key)
}

func actionKey(action string, scope uuid.UUID) string {
	return fmt.Sprintf("%s:%s", action, scope.String())
}
