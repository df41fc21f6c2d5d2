package pos

import (
	"context"
	"errors"

	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"
)

// MockOrderData is a test mock for OrderData
type MockOrderData struct {
	orders map[uuid.UUID]*OrderSummary
	lines  map[uuid.UUID]*OrderLine

	ListActiveOrdersFunc   func(ctx context.Context) ([]OrderSummary, error)
	GetOrderFunc           func(ctx context.Context, id uuid.UUID) (*OrderSummary, error)
	ListOrderLinesFunc     func(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error)
	GetOrderLineFunc       func(ctx context.Context, itemID uuid.UUID) (*OrderLine, error)
	CreateOrderLineFunc    func(ctx context.Context, orderID, menuItemID uuid.UUID, qty int) (*OrderLine, error)
	UpdateLineQuantityFunc func(ctx context.Context, itemID uuid.UUID, qty int) (*OrderLine, error)
	CancelLinePartialFunc  func(ctx context.Context, itemID uuid.UUID, qty int, reason string) error
	CancelLinesFunc        func(ctx context.Context, itemIDs []uuid.UUID, reason string) error
}

func NewMockOrderData() *MockOrderData {
	return &MockOrderData{
		orders: make(map[uuid.UUID]*OrderSummary),
		lines:  make(map[uuid.UUID]*OrderLine),
	}
}

func (m *MockOrderData) AddOrder(o *OrderSummary) {
	m.orders[o.ID] = o
}

func (m *MockOrderData) AddLine(l *OrderLine) {
	m.lines[l.ID] = l
}

func (m *MockOrderData) ListActiveOrders(ctx context.Context) ([]OrderSummary, error) {
	if m.ListActiveOrdersFunc != nil {
		return m.ListActiveOrdersFunc(ctx)
	}
	result := make([]OrderSummary, 0, len(m.orders))
	for _, o := range m.orders {
		result = append(result, *o)
	}
	return result, nil
}

func (m *MockOrderData) GetOrder(ctx context.Context, id uuid.UUID) (*OrderSummary, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	o, exists := m.orders[id]
	if !exists {
		return nil, errors.New("order not found")
	}
	return o, nil
}

func (m *MockOrderData) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	if m.ListOrderLinesFunc != nil {
		return m.ListOrderLinesFunc(ctx, orderID)
	}
	result := make([]OrderLine, 0)
	for _, l := range m.lines {
		if l.OrderID == orderID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *MockOrderData) GetOrderLine(ctx context.Context, itemID uuid.UUID) (*OrderLine, error) {
	if m.GetOrderLineFunc != nil {
		return m.GetOrderLineFunc(ctx, itemID)
	}
	l, exists := m.lines[itemID]
	if !exists {
		return nil, errors.New("order line not found")
	}
	return l, nil
}

func (m *MockOrderData) CreateOrderLine(ctx context.Context, orderID, menuItemID uuid.UUID, qty int) (*OrderLine, error) {
	if m.CreateOrderLineFunc != nil {
		return m.CreateOrderLineFunc(ctx, orderID, menuItemID, qty)
	}
	l := &OrderLine{
		ID:         uuid.New(),
		OrderID:    orderID,
		MenuItemID: menuItemID,
		Quantity:   qty,
		Status:     "pending",
	}
	m.lines[l.ID] = l
	return l, nil
}

func (m *MockOrderData) UpdateLineQuantity(ctx context.Context, itemID uuid.UUID, qty int) (*OrderLine, error) {
	if m.UpdateLineQuantityFunc != nil {
		return m.UpdateLineQuantityFunc(ctx, itemID, qty)
	}
	l, exists := m.lines[itemID]
	if !exists {
		return nil, errors.New("order line not found")
	}
	l.Quantity = qty
	return l, nil
}

func (m *MockOrderData) CancelLinePartial(ctx context.Context, itemID uuid.UUID, qty int, reason string) error {
	if m.CancelLinePartialFunc != nil {
		return m.CancelLinePartialFunc(ctx, itemID, qty, reason)
	}
	l, exists := m.lines[itemID]
	if !exists {
		return errors.New("order line not found")
	}
	l.Quantity -= qty
	if l.Quantity <= 0 {
		l.Status = "cancelled"
	}
	return nil
}

func (m *MockOrderData) CancelLines(ctx context.Context, itemIDs []uuid.UUID, reason string) error {
	if m.CancelLinesFunc != nil {
		return m.CancelLinesFunc(ctx, itemIDs, reason)
	}
	for _, id := range itemIDs {
		l, exists := m.lines[id]
		if !exists {
			return errors.New("order line not found")
		}
		l.Status = "cancelled"
	}
	return nil
}

// MockKitchenData is a test mock for KitchenData
type MockKitchenData struct {
	progress map[uuid.UUID][]ProgressRecord
	history  map[uuid.UUID][]HistoryEntry

	NotifiedRequests []NotifiedRequest

	ListAllProgressFunc func(ctx context.Context) ([]ProgressRecord, error)
	ListProgressFunc    func(ctx context.Context, orderID uuid.UUID) ([]ProgressRecord, error)
	NotifyItemsFunc     func(ctx context.Context, orderID uuid.UUID, req NotifyRequest) error
	ListHistoryFunc     func(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error)
}

type NotifiedRequest struct {
	OrderID uuid.UUID
	Req     NotifyRequest
}

func NewMockKitchenData() *MockKitchenData {
	return &MockKitchenData{
		progress: make(map[uuid.UUID][]ProgressRecord),
		history:  make(map[uuid.UUID][]HistoryEntry),
	}
}

func (m *MockKitchenData) SetProgress(orderID uuid.UUID, records []ProgressRecord) {
	m.progress[orderID] = records
}

func (m *MockKitchenData) ListAllProgress(ctx context.Context) ([]ProgressRecord, error) {
	if m.ListAllProgressFunc != nil {
		return m.ListAllProgressFunc(ctx)
	}
	result := make([]ProgressRecord, 0)
	for _, records := range m.progress {
		result = append(result, records...)
	}
	return result, nil
}

func (m *MockKitchenData) ListProgress(ctx context.Context, orderID uuid.UUID) ([]ProgressRecord, error) {
	if m.ListProgressFunc != nil {
		return m.ListProgressFunc(ctx, orderID)
	}
	return m.progress[orderID], nil
}

func (m *MockKitchenData) NotifyItems(ctx context.Context, orderID uuid.UUID, req NotifyRequest) error {
	if m.NotifyItemsFunc != nil {
		return m.NotifyItemsFunc(ctx, orderID, req)
	}
	m.NotifiedRequests = append(m.NotifiedRequests, NotifiedRequest{OrderID: orderID, Req: req})
	return nil
}

func (m *MockKitchenData) ListHistory(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error) {
	if m.ListHistoryFunc != nil {
		return m.ListHistoryFunc(ctx, orderID)
	}
	return m.history[orderID], nil
}

// MockCancellationAudit is a test mock for CancellationAudit
type MockCancellationAudit struct {
	Records []*CancellationRecord

	RecordFunc      func(ctx context.Context, rec *CancellationRecord) error
	ListByOrderFunc func(ctx context.Context, orderID uuid.UUID) ([]*CancellationRecord, error)
}

func NewMockCancellationAudit() *MockCancellationAudit {
	return &MockCancellationAudit{}
}

func (m *MockCancellationAudit) Record(ctx context.Context, rec *CancellationRecord) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, rec)
	}
	m.Records = append(m.Records, rec)
	return nil
}

func (m *MockCancellationAudit) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*CancellationRecord, error) {
	if m.ListByOrderFunc != nil {
		return m.ListByOrderFunc(ctx, orderID)
	}
	result := make([]*CancellationRecord, 0)
	for _, rec := range m.Records {
		if rec.OrderID == orderID {
			result = append(result, rec)
		}
	}
	return result, nil
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	PublishedEvents []PublishedEvent
	PublishFunc     func(ctx context.Context, topic string, data []byte) error
}

type PublishedEvent struct {
	Topic string
	Data  []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishedEvents: make([]PublishedEvent, 0),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	m.PublishedEvents = append(m.PublishedEvents, PublishedEvent{Topic: topic, Data: data})
	return nil
}

// MockSubscriber is a test mock for events.Subscriber
type MockSubscriber struct {
	Handlers map[string]events.HandlerFunc

	SubscribeFunc func(ctx context.Context, topic string, handler events.HandlerFunc) error
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{
		Handlers: make(map[string]events.HandlerFunc),
	}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, topic, handler)
	}
	m.Handlers[topic] = handler
	return nil
}

// Deliver pushes a message through the handler registered for topic.
func (m *MockSubscriber) Deliver(ctx context.Context, topic string, msg []byte) error {
	handler, exists := m.Handlers[topic]
	if !exists {
		return errors.New("no handler for topic " + topic)
	}
	return handler(ctx, msg)
}

// MockStreamConsumer is a test mock for events.StreamConsumer
type MockStreamConsumer struct {
	messages []events.StreamMessage

	FetchFunc           func(ctx context.Context, maxMessages int) ([]events.StreamMessage, error)
	SubscribeStreamFunc func(ctx context.Context, handler events.HandlerFunc) error
}

func NewMockStreamConsumer() *MockStreamConsumer {
	return &MockStreamConsumer{
		messages: make([]events.StreamMessage, 0),
	}
}

func (m *MockStreamConsumer) Fetch(ctx context.Context, maxMessages int) ([]events.StreamMessage, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, maxMessages)
	}
	return m.messages, nil
}

func (m *MockStreamConsumer) SubscribeStream(ctx context.Context, handler events.HandlerFunc) error {
	if m.SubscribeStreamFunc != nil {
		return m.SubscribeStreamFunc(ctx, handler)
	}
	return nil
}

func (m *MockStreamConsumer) AddMessage(data []byte) {
	m.messages = append(m.messages, events.StreamMessage{Data: data})
}

// MockBroadcaster is a test mock for Broadcaster
type MockBroadcaster struct {
	Broadcasts []BroadcastCall
}

type BroadcastCall struct {
	EventType string
	Payload   interface{}
}

func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{}
}

func (m *MockBroadcaster) Broadcast(eventType string, payload interface{}) {
	m.Broadcasts = append(m.Broadcasts, BroadcastCall{EventType: eventType, Payload: payload})
}
