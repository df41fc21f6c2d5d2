package pos

import (
	"context"
	"net/http"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/pkg/event"
)

// Action scopes used with the board's in-flight guards.
const (
	actionNotify = "notify"
	actionCancel = "cancel"
)

type notifyRequestBody struct {
	TableName string `json:"table_name"`
	Priority  string `json:"priority"`
	Source    string `json:"source"`
}

// NotifyKitchen sends the outstanding delta for an order to the kitchen. The
// delta is recomputed from fresh server truth right before sending, so a
// repeat call after a successful notify finds nothing to send.
func (h *Handler) NotifyKitchen(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.NotifyKitchen")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	var req notifyRequestBody
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	if !h.board.Begin(actionNotify, orderID) {
		aqm.RespondError(w, http.StatusConflict, "Notify already in progress for this order")
		return
	}
	defer h.board.End(actionNotify, orderID)

	lines, err := h.orderData.ListOrderLines(ctx, orderID)
	if err != nil {
		log.Error("error loading order lines", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	// The delta must come from fresh counters; an empty view would resend
	// already-notified units.
	if err := h.progress.Refresh(ctx, orderID); err != nil {
		log.Error("cannot refresh progress before notify", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusServiceUnavailable, "Kitchen progress unavailable")
		return
	}

	deltas := PendingDeltas(lines, NotifiedByItem(h.progress.GetByOrder(orderID)))
	if len(deltas) == 0 {
		h.board.ClearPendingNotify(orderID)
		aqm.RespondError(w, http.StatusBadRequest, "Nothing to notify")
		return
	}

	notifyReq := NotifyRequest{
		Items:     deltas,
		TableName: req.TableName,
		Priority:  req.Priority,
		Source:    req.Source,
	}

	if err := h.kitchenData.NotifyItems(ctx, orderID, notifyReq); err != nil {
		log.Error("cannot notify kitchen", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.board.ClearPendingNotify(orderID)

	if err := h.progress.Refresh(ctx, orderID); err != nil {
		log.Info("cannot refresh progress after notify", "error", err, "order_id", orderID.String())
	}

	h.publishItemsNotified(ctx, orderID, notifyReq)

	log.Info("kitchen notified", "order_id", orderID.String(), "items", len(deltas))
	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"order_id": orderID.String(),
		"notified": deltas,
	}, nil)
}

type quantityChangeRequest struct {
	Delta int `json:"delta"`
}

// ChangeQuantity applies a requested quantity change to a menu line according
// to the quantity-change policy. The decision is computed against the current
// kitchen counters; the authoritative check still happens server-side when
// the resulting mutation is submitted.
func (h *Handler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ChangeQuantity")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	menuItemID, err := uuid.Parse(chi.URLParam(r, "menuItemID"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid menu item ID")
		return
	}

	var req quantityChangeRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	lines, err := h.orderData.ListOrderLines(ctx, orderID)
	if err != nil {
		log.Error("error loading order lines", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	var line *OrderLine
	for i := range lines {
		if lines[i].MenuItemID == menuItemID && lines[i].Status != "cancelled" {
			line = &lines[i]
			break
		}
	}

	records, err := h.progressFor(ctx, orderID, log)
	if err != nil {
		aqm.RespondError(w, http.StatusServiceUnavailable, "Kitchen progress unavailable")
		return
	}
	totalSent := NotifiedByItem(records)[menuItemID]
	cancellable := CancellableByItem(records)[menuItemID]

	cur := 0
	if line != nil {
		cur = line.Quantity
	}

	action := DecideQuantityChange(line != nil, cur, req.Delta, totalSent, cancellable)

	switch action.Kind {
	case ActionCreateLine:
		created, err := h.orderData.CreateOrderLine(ctx, orderID, menuItemID, 1)
		if err != nil {
			log.Error("cannot create order line", "error", err, "order_id", orderID.String())
			aqm.RespondError(w, http.StatusInternalServerError, "Could not create order line")
			return
		}
		h.board.MarkPendingNotify(orderID)
		aqm.Respond(w, http.StatusCreated, map[string]interface{}{
			"applied": action.Kind.String(),
			"line":    created,
		}, nil)

	case ActionApplyDirect:
		updated, err := h.orderData.UpdateLineQuantity(ctx, line.ID, cur+action.Amount)
		if err != nil {
			log.Error("cannot update line quantity", "error", err, "item_id", line.ID.String())
			aqm.RespondError(w, http.StatusInternalServerError, "Could not update quantity")
			return
		}
		if action.Amount > 0 {
			h.board.MarkPendingNotify(orderID)
		}
		aqm.Respond(w, http.StatusOK, map[string]interface{}{
			"applied": action.Kind.String(),
			"line":    updated,
		}, nil)

	case ActionRequestCancellation:
		target := CancelTarget{
			OrderItemID: line.ID,
			OrderID:     orderID,
			MenuItemID:  menuItemID,
			DishName:    line.DishName,
			MaxQty:      action.MaxQty,
			StagedAt:    time.Now(),
		}
		h.board.StageCancel(target)
		log.Info("cancellation flow opened", "item_id", line.ID.String(), "max_qty", action.MaxQty)
		aqm.Respond(w, http.StatusOK, map[string]interface{}{
			"applied": action.Kind.String(),
			"cancel":  target,
		}, nil)

	case ActionReject:
		log.Debug("quantity change rejected", "reason", action.Reason,
			"order_id", orderID.String(), "menu_item_id", menuItemID.String())
		aqm.RespondError(w, http.StatusConflict, action.Reason)
	}
}

type confirmCancelRequest struct {
	Qty    int    `json:"qty"`
	Reason string `json:"reason"`
}

// ConfirmCancel completes a staged single-line cancellation with a
// user-entered reason and quantity. On failure the staged target survives so
// the flow can be retried.
func (h *Handler) ConfirmCancel(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ConfirmCancel")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req confirmCancelRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	if req.Qty <= 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Cancellation quantity must be positive")
		return
	}
	if req.Reason == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Cancellation reason is required")
		return
	}

	if !h.board.Begin(actionCancel, itemID) {
		aqm.RespondError(w, http.StatusConflict, "Cancellation already in progress for this item")
		return
	}
	defer h.board.End(actionCancel, itemID)

	line, err := h.orderData.GetOrderLine(ctx, itemID)
	if err != nil || line == nil {
		log.Error("cannot load order line for cancel", "error", err, "item_id", itemID.String())
		aqm.RespondError(w, http.StatusNotFound, "Order item not found")
		return
	}

	// A staged target carries the cap the cashier was shown when the flow
	// opened. The live counters below still have the final say.
	if target, staged := h.board.PeekCancel(itemID); staged && req.Qty > target.MaxQty {
		aqm.RespondError(w, http.StatusBadRequest, "Cancellation quantity exceeds staged maximum")
		return
	}

	if err := h.progress.Refresh(ctx, line.OrderID); err != nil {
		log.Error("cannot refresh progress before cancel", "error", err, "order_id", line.OrderID.String())
		aqm.RespondError(w, http.StatusServiceUnavailable, "Kitchen progress unavailable")
		return
	}
	cancellable := CancellableByItem(h.progress.GetByOrder(line.OrderID))[line.MenuItemID]

	if cancellable <= 0 {
		aqm.RespondError(w, http.StatusConflict, ReasonInPreparation)
		return
	}
	if req.Qty > cancellable {
		aqm.RespondError(w, http.StatusBadRequest, "Cancellation quantity exceeds cancellable units")
		return
	}

	if err := h.orderData.CancelLinePartial(ctx, itemID, req.Qty, req.Reason); err != nil {
		log.Error("cannot cancel order line", "error", err, "item_id", itemID.String())
		aqm.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.board.TakeCancel(itemID)
	h.recordCancellation(ctx, line, req.Qty, req.Reason, log)
	h.publishItemsCancelled(ctx, line.OrderID, []uuid.UUID{itemID}, req.Qty, req.Reason)

	if err := h.progress.Refresh(ctx, line.OrderID); err != nil {
		log.Info("cannot refresh progress after cancel", "error", err, "order_id", line.OrderID.String())
	}

	log.Info("order line partially cancelled", "item_id", itemID.String(), "qty", req.Qty)
	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"order_item_id": itemID.String(),
		"qty":           req.Qty,
	}, nil)
}

type bulkCancelRequest struct {
	ItemIDs []string `json:"item_ids"`
	Reason  string   `json:"reason"`
}

// BulkCancelItems cancels multiple rows of an order in one request.
func (h *Handler) BulkCancelItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.BulkCancelItems")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	var req bulkCancelRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	if len(req.ItemIDs) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "No items to cancel")
		return
	}
	if req.Reason == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Cancellation reason is required")
		return
	}

	itemIDs := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid item ID: "+raw)
			return
		}
		itemIDs = append(itemIDs, id)
	}

	if !h.board.Begin(actionCancel, orderID) {
		aqm.RespondError(w, http.StatusConflict, "Cancellation already in progress for this order")
		return
	}
	defer h.board.End(actionCancel, orderID)

	if err := h.orderData.CancelLines(ctx, itemIDs, req.Reason); err != nil {
		log.Error("cannot bulk cancel order lines", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, itemID := range itemIDs {
		h.board.TakeCancel(itemID)
		rec := NewCancellationRecord()
		rec.OrderID = orderID
		rec.OrderItemID = itemID
		rec.Reason = req.Reason
		rec.By = event.ActorCashier
		rec.BeforeCreate()
		if h.audit != nil {
			if err := h.audit.Record(ctx, rec); err != nil {
				log.Info("cannot record cancellation audit", "error", err, "item_id", itemID.String())
			}
		}
	}

	h.publishItemsCancelled(ctx, orderID, itemIDs, 0, req.Reason)

	if err := h.progress.Refresh(ctx, orderID); err != nil {
		log.Info("cannot refresh progress after bulk cancel", "error", err, "order_id", orderID.String())
	}

	log.Info("order lines cancelled", "order_id", orderID.String(), "count", len(itemIDs))
	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"order_id":  orderID.String(),
		"cancelled": len(itemIDs),
	}, nil)
}

func (h *Handler) recordCancellation(ctx context.Context, line *OrderLine, qty int, reason string, log aqm.Logger) {
	if h.audit == nil {
		return
	}

	rec := NewCancellationRecord()
	rec.OrderID = line.OrderID
	rec.OrderItemID = line.ID
	rec.MenuItemID = line.MenuItemID
	rec.DishName = line.DishName
	rec.Qty = qty
	rec.Reason = reason
	rec.By = event.ActorCashier
	rec.BeforeCreate()

	if err := h.audit.Record(ctx, rec); err != nil {
		log.Info("cannot record cancellation audit", "error", err, "item_id", line.ID.String())
	}
}
