package pos

import (
	"testing"

	"github.com/google/uuid"
)

func TestProgressRecordCancellable(t *testing.T) {
	tests := []struct {
		name   string
		record ProgressRecord
		want   int
	}{
		{
			name:   "nothingStarted",
			record: ProgressRecord{Notified: 5},
			want:   5,
		},
		{
			name:   "partiallyPreparing",
			record: ProgressRecord{Notified: 5, Preparing: 2},
			want:   3,
		},
		{
			name:   "mixedStages",
			record: ProgressRecord{Notified: 6, Preparing: 1, Ready: 2, Served: 1},
			want:   2,
		},
		{
			name:   "fullyConsumed",
			record: ProgressRecord{Notified: 3, Preparing: 1, Ready: 1, Served: 1},
			want:   0,
		},
		{
			name:   "countersExceedNotified",
			record: ProgressRecord{Notified: 2, Preparing: 2, Ready: 1},
			want:   0,
		},
		{
			name:   "negativeCountersIgnored",
			record: ProgressRecord{Notified: 4, Preparing: -1},
			want:   4,
		},
		{
			name:   "zeroRecord",
			record: ProgressRecord{},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Cancellable(); got != tt.want {
				t.Errorf("Cancellable() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNotifiedByItem(t *testing.T) {
	itemA := uuid.New()
	itemB := uuid.New()

	tests := []struct {
		name    string
		records []ProgressRecord
		want    map[uuid.UUID]int
	}{
		{
			name:    "empty",
			records: nil,
			want:    map[uuid.UUID]int{},
		},
		{
			name: "singleBatch",
			records: []ProgressRecord{
				{MenuItemID: itemA, Notified: 3},
			},
			want: map[uuid.UUID]int{itemA: 3},
		},
		{
			name: "multipleBatchesSameItem",
			records: []ProgressRecord{
				{MenuItemID: itemA, BatchID: uuid.New(), Notified: 2},
				{MenuItemID: itemA, BatchID: uuid.New(), Notified: 3},
			},
			want: map[uuid.UUID]int{itemA: 5},
		},
		{
			name: "multipleItems",
			records: []ProgressRecord{
				{MenuItemID: itemA, Notified: 2},
				{MenuItemID: itemB, Notified: 1},
				{MenuItemID: itemA, Notified: 1},
			},
			want: map[uuid.UUID]int{itemA: 3, itemB: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NotifiedByItem(tt.records)
			if len(got) != len(tt.want) {
				t.Fatalf("NotifiedByItem() has %d entries, want %d", len(got), len(tt.want))
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("NotifiedByItem()[%s] = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestCancellableByItem(t *testing.T) {
	itemA := uuid.New()
	itemB := uuid.New()

	records := []ProgressRecord{
		{MenuItemID: itemA, BatchID: uuid.New(), Notified: 3, Preparing: 1},
		{MenuItemID: itemA, BatchID: uuid.New(), Notified: 2, Served: 2},
		{MenuItemID: itemB, BatchID: uuid.New(), Notified: 4},
	}

	got := CancellableByItem(records)

	if got[itemA] != 2 {
		t.Errorf("CancellableByItem()[%s] = %d, want 2", itemA, got[itemA])
	}
	if got[itemB] != 4 {
		t.Errorf("CancellableByItem()[%s] = %d, want 4", itemB, got[itemB])
	}
}

func TestCancellableByItemNeverNegative(t *testing.T) {
	itemA := uuid.New()

	// One batch over-consumed, another untouched. The violating batch must
	// not eat into the healthy batch.
	records := []ProgressRecord{
		{MenuItemID: itemA, BatchID: uuid.New(), Notified: 1, Preparing: 3},
		{MenuItemID: itemA, BatchID: uuid.New(), Notified: 2},
	}

	got := CancellableByItem(records)
	if got[itemA] != 2 {
		t.Errorf("CancellableByItem()[%s] = %d, want 2", itemA, got[itemA])
	}
}

func TestPendingDeltas(t *testing.T) {
	itemA := uuid.New()
	itemB := uuid.New()
	itemC := uuid.New()
	orderID := uuid.New()

	tests := []struct {
		name     string
		lines    []OrderLine
		notified map[uuid.UUID]int
		want     []DeltaItem
	}{
		{
			name:     "noLines",
			lines:    nil,
			notified: map[uuid.UUID]int{},
			want:     nil,
		},
		{
			name: "allUnsent",
			lines: []OrderLine{
				{OrderID: orderID, MenuItemID: itemA, Quantity: 2},
				{OrderID: orderID, MenuItemID: itemB, Quantity: 1},
			},
			notified: map[uuid.UUID]int{},
			want: []DeltaItem{
				{MenuItemID: itemA, Delta: 2},
				{MenuItemID: itemB, Delta: 1},
			},
		},
		{
			name: "partiallySent",
			lines: []OrderLine{
				{OrderID: orderID, MenuItemID: itemA, Quantity: 5},
			},
			notified: map[uuid.UUID]int{itemA: 3},
			want: []DeltaItem{
				{MenuItemID: itemA, Delta: 2},
			},
		},
		{
			name: "fullySentExcluded",
			lines: []OrderLine{
				{OrderID: orderID, MenuItemID: itemA, Quantity: 3},
				{OrderID: orderID, MenuItemID: itemB, Quantity: 2},
			},
			notified: map[uuid.UUID]int{itemA: 3, itemB: 1},
			want: []DeltaItem{
				{MenuItemID: itemB, Delta: 1},
			},
		},
		{
			name: "overNotifiedExcluded",
			lines: []OrderLine{
				{OrderID: orderID, MenuItemID: itemA, Quantity: 2},
			},
			notified: map[uuid.UUID]int{itemA: 4},
			want:     nil,
		},
		{
			name: "cancelledLinesSkipped",
			lines: []OrderLine{
				{OrderID: orderID, MenuItemID: itemA, Quantity: 2, Status: "cancelled"},
				{OrderID: orderID, MenuItemID: itemB, Quantity: 1},
			},
			notified: map[uuid.UUID]int{},
			want: []DeltaItem{
				{MenuItemID: itemB, Delta: 1},
			},
		},
		{
			name: "preservesLineOrder",
			lines: []OrderLine{
				{OrderID: orderID, MenuItemID: itemC, Quantity: 1},
				{OrderID: orderID, MenuItemID: itemA, Quantity: 2},
				{OrderID: orderID, MenuItemID: itemB, Quantity: 3},
			},
			notified: map[uuid.UUID]int{},
			want: []DeltaItem{
				{MenuItemID: itemC, Delta: 1},
				{MenuItemID: itemA, Delta: 2},
				{MenuItemID: itemB, Delta: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PendingDeltas(tt.lines, tt.notified)
			if len(got) != len(tt.want) {
				t.Fatalf("PendingDeltas() returned %d items, want %d", len(got), len(tt.want))
			}
			for i, want := range tt.want {
				if got[i] != want {
					t.Errorf("PendingDeltas()[%d] = %+v, want %+v", i, got[i], want)
				}
			}
		})
	}
}
