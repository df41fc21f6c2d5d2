package pos

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBoardPendingNotify(t *testing.T) {
	board := NewBoard()
	orderID := uuid.New()
	otherID := uuid.New()

	if board.HasPendingNotify(orderID) {
		t.Error("fresh board reports pending notify")
	}

	board.MarkPendingNotify(orderID)
	if !board.HasPendingNotify(orderID) {
		t.Error("pending notify not recorded")
	}
	if board.HasPendingNotify(otherID) {
		t.Error("pending notify leaked to another order")
	}

	board.ClearPendingNotify(orderID)
	if board.HasPendingNotify(orderID) {
		t.Error("pending notify survived clear")
	}
}

func TestBoardStagedCancellations(t *testing.T) {
	board := NewBoard()
	itemID := uuid.New()

	if _, ok := board.PeekCancel(itemID); ok {
		t.Error("fresh board has a staged target")
	}

	target := CancelTarget{
		OrderItemID: itemID,
		OrderID:     uuid.New(),
		MenuItemID:  uuid.New(),
		DishName:    "Grilled squid",
		MaxQty:      2,
		StagedAt:    time.Now(),
	}
	board.StageCancel(target)

	got, ok := board.PeekCancel(itemID)
	if !ok {
		t.Fatal("staged target not found")
	}
	if got.MaxQty != 2 || got.DishName != "Grilled squid" {
		t.Errorf("PeekCancel() = %+v, want staged target", got)
	}

	// Peek must not consume.
	if _, ok := board.PeekCancel(itemID); !ok {
		t.Error("peek consumed the staged target")
	}

	// Restaging replaces the previous target.
	target.MaxQty = 1
	board.StageCancel(target)
	got, _ = board.PeekCancel(itemID)
	if got.MaxQty != 1 {
		t.Errorf("restaged MaxQty = %d, want 1", got.MaxQty)
	}

	taken, ok := board.TakeCancel(itemID)
	if !ok || taken.MaxQty != 1 {
		t.Errorf("TakeCancel() = %+v, %v", taken, ok)
	}
	if _, ok := board.TakeCancel(itemID); ok {
		t.Error("taken target still present")
	}
}

func TestBoardInflightGuard(t *testing.T) {
	board := NewBoard()
	orderID := uuid.New()
	otherID := uuid.New()

	if !board.Begin("notify", orderID) {
		t.Fatal("first Begin refused")
	}
	if board.Begin("notify", orderID) {
		t.Error("duplicate Begin allowed")
	}
	if !board.Begin("notify", otherID) {
		t.Error("Begin for another order blocked")
	}
	if !board.Begin("cancel", orderID) {
		t.Error("Begin for another action blocked")
	}

	board.End("notify", orderID)
	if !board.Begin("notify", orderID) {
		t.Error("Begin refused after End")
	}
}
