package pos

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/pkg/enums/prepstage"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	logger      aqm.Logger
	config      *aqm.Config
	tlm         *telemetry.HTTP
	orderData   OrderData
	kitchenData KitchenData
	progress    *ProgressStateCache
	board       *Board
	audit       CancellationAudit
	publisher   events.Publisher
	hub         Broadcaster
}

type HandlerDeps struct {
	OrderData   OrderData
	KitchenData KitchenData
	Progress    *ProgressStateCache
	Board       *Board
	Audit       CancellationAudit
	Publisher   events.Publisher
	Hub         Broadcaster
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	board := hd.Board
	if board == nil {
		board = NewBoard()
	}

	return &Handler{
		logger:      logger,
		config:      config,
		tlm:         telemetry.NewHTTP(),
		orderData:   hd.OrderData,
		kitchenData: hd.KitchenData,
		progress:    hd.Progress,
		board:       board,
		audit:       hd.Audit,
		publisher:   hd.Publisher,
		hub:         hd.Hub,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pos", func(r chi.Router) {
		r.Get("/orders", h.ActiveOrders)

		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/lines", h.OrderLines)
			r.Get("/deltas", h.NotifyPreview)
			r.Post("/notify", h.NotifyKitchen)
			r.Get("/history", h.KitchenHistory)
			r.Get("/cancellations", h.Cancellations)
			r.Post("/lines/{menuItemID}/quantity", h.ChangeQuantity)
			r.Post("/items/cancel", h.BulkCancelItems)
		})

		r.Post("/order-items/{id}/cancel", h.ConfirmCancel)
	})
}

// LineView joins an order line with its reconciled kitchen counters: how many
// units were notified, how many are still cancellable, and the unsent delta.
type LineView struct {
	OrderLine
	Notified    int `json:"notified"`
	Cancellable int `json:"cancellable"`
	Delta       int `json:"delta"`
}

// ActiveOrders lists open orders with their pending-notify flags.
func (h *Handler) ActiveOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ActiveOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orders, err := h.orderData.ListActiveOrders(ctx)
	if err != nil {
		log.Error("error retrieving active orders", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve active orders")
		return
	}

	type orderView struct {
		OrderSummary
		PendingNotify bool `json:"pending_notify"`
	}

	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, orderView{
			OrderSummary:  order,
			PendingNotify: h.board.HasPendingNotify(order.ID),
		})
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{"orders": views}, nil)
}

// OrderLines returns the reconciled line view the POS screen renders.
func (h *Handler) OrderLines(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.OrderLines")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	lines, err := h.orderData.ListOrderLines(ctx, orderID)
	if err != nil {
		log.Error("error loading order lines", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	records, err := h.progressFor(ctx, orderID, log)
	if err != nil {
		aqm.RespondError(w, http.StatusServiceUnavailable, "Kitchen progress unavailable")
		return
	}
	notified := NotifiedByItem(records)
	cancellable := CancellableByItem(records)

	views := make([]LineView, 0, len(lines))
	for _, line := range lines {
		delta := line.Quantity - notified[line.MenuItemID]
		if delta < 0 {
			delta = 0
		}
		views = append(views, LineView{
			OrderLine:   line,
			Notified:    notified[line.MenuItemID],
			Cancellable: cancellable[line.MenuItemID],
			Delta:       delta,
		})
	}

	response := map[string]interface{}{
		"order_id":       orderID.String(),
		"pending_notify": h.board.HasPendingNotify(orderID),
		"lines":          views,
	}
	aqm.Respond(w, http.StatusOK, response, nil)
}

// NotifyPreview returns the exact payload the next notify action would send.
func (h *Handler) NotifyPreview(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.NotifyPreview")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	lines, err := h.orderData.ListOrderLines(ctx, orderID)
	if err != nil {
		log.Error("error loading order lines", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	records, err := h.progressFor(ctx, orderID, log)
	if err != nil {
		aqm.RespondError(w, http.StatusServiceUnavailable, "Kitchen progress unavailable")
		return
	}
	deltas := PendingDeltas(lines, NotifiedByItem(records))
	if deltas == nil {
		deltas = []DeltaItem{}
	}

	response := map[string]interface{}{
		"order_id": orderID.String(),
		"items":    deltas,
	}
	aqm.Respond(w, http.StatusOK, response, nil)
}

// KitchenHistory proxies the kitchen history feed for an order.
func (h *Handler) KitchenHistory(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.KitchenHistory")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	var stageFilter *prepstage.Stage
	if raw := r.URL.Query().Get("stage"); raw != "" {
		stageFilter = prepstage.ByName(raw)
		if stageFilter == nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid stage")
			return
		}
	}

	history, err := h.kitchenData.ListHistory(ctx, orderID)
	if err != nil {
		log.Error("error loading kitchen history", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve kitchen history")
		return
	}

	if stageFilter != nil {
		filtered := make([]HistoryEntry, 0, len(history))
		for _, entry := range history {
			if entry.Stage == stageFilter.Code() {
				filtered = append(filtered, entry)
			}
		}
		history = filtered
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{"history": history}, nil)
}

// Cancellations lists the audit trail for an order.
func (h *Handler) Cancellations(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Cancellations")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	orderID, ok := h.parseOrderIDParam(w, r, log)
	if !ok {
		return
	}

	if h.audit == nil {
		aqm.Respond(w, http.StatusOK, map[string]interface{}{"cancellations": []interface{}{}}, nil)
		return
	}

	records, err := h.audit.ListByOrder(ctx, orderID)
	if err != nil {
		log.Error("error loading cancellations", "error", err, "order_id", orderID.String())
		aqm.RespondError(w, http.StatusInternalServerError, "Could not retrieve cancellations")
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{"cancellations": records}, nil)
}

// progressFor returns the cached progress for an order, refreshing once from
// the kitchen service when the cache holds nothing for it. When the cache is
// empty and the kitchen cannot be reached there is no usable truth, stale or
// fresh, and the caller must not treat the order as unsent.
func (h *Handler) progressFor(ctx context.Context, orderID uuid.UUID, log aqm.Logger) ([]ProgressRecord, error) {
	records := h.progress.GetByOrder(orderID)
	if len(records) > 0 {
		return records, nil
	}

	if err := h.progress.Refresh(ctx, orderID); err != nil {
		log.Info("cannot refresh kitchen progress", "error", err, "order_id", orderID.String())
		return nil, err
	}

	return h.progress.GetByOrder(orderID), nil
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

func (h *Handler) parseOrderIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "orderID")
	orderID, err := uuid.Parse(raw)
	if err != nil {
		log.Debug("invalid order ID", "orderID", raw)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return uuid.Nil, false
	}
	return orderID, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}, log aqm.Logger) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		log.Debug("cannot read request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if len(body) == 0 {
		return true
	}

	if err := json.Unmarshal(body, dest); err != nil {
		log.Debug("cannot decode request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	return true
}
