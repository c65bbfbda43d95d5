package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type recordingStore struct {
	saves    int
	lastSnap []Item
	saveErr  error
}

func (r *recordingStore) Save(ctx context.Context, sessionID string, items []Item) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.lastSnap = items
	return nil
}

func testItem(name, price string) Item {
	return Item{
		ProductID: uuid.New(),
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func TestStateAddItemTwiceMergesLine(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &recordingStore{}
	state := NewState("session-1", store, nil)

	item := testItem("Sindhri", "10.99")
	if err := state.Apply(ctx, AddItem{Item: item}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := state.Apply(ctx, AddItem{Item: item}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := state.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", items[0].Quantity)
	}
	if state.TotalItems() != 2 {
		t.Fatalf("expected total items 2, got %d", state.TotalItems())
	}
	if store.saves != 2 {
		t.Fatalf("expected a snapshot per mutation, got %d", store.saves)
	}
}

func TestStatePreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state := NewState("session-1", &recordingStore{}, nil)

	first := testItem("Sindhri", "10.99")
	second := testItem("Chaunsa", "12.99")
	_ = state.Apply(ctx, AddItem{Item: first})
	_ = state.Apply(ctx, AddItem{Item: second})
	_ = state.Apply(ctx, AddItem{Item: first})

	items := state.Items()
	if len(items) != 2 {
		t.Fatalf("expected two lines, got %d", len(items))
	}
	if items[0].ProductID != first.ProductID || items[1].ProductID != second.ProductID {
		t.Fatalf("line order changed: %+v", items)
	}
}

func TestStateRemoveItemUnknownIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state := NewState("session-1", &recordingStore{}, nil)
	_ = state.Apply(ctx, AddItem{Item: testItem("Sindhri", "10.99")})

	if err := state.Apply(ctx, RemoveItem{ProductID: uuid.New()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Items()) != 1 {
		t.Fatalf("expected untouched cart, got %d lines", len(state.Items()))
	}
}

func TestStateUpdateQuantityClampsToOne(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state := NewState("session-1", &recordingStore{}, nil)
	item := testItem("Anwar Ratol", "8.50")
	_ = state.Apply(ctx, AddItem{Item: item})

	if err := state.Apply(ctx, UpdateQuantity{ProductID: item.ProductID, Quantity: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := state.Items()[0].Quantity; got != 1 {
		t.Fatalf("expected clamped quantity 1, got %d", got)
	}

	if err := state.Apply(ctx, UpdateQuantity{ProductID: item.ProductID, Quantity: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := state.Items()[0].Quantity; got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
}

func TestStateClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &recordingStore{}
	state := NewState("session-1", store, nil)
	_ = state.Apply(ctx, AddItem{Item: testItem("Sindhri", "10.99")})
	_ = state.Apply(ctx, AddItem{Item: testItem("Chaunsa", "12.99")})

	if err := state.Apply(ctx, Clear{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Items()) != 0 {
		t.Fatalf("expected empty cart")
	}
	if len(store.lastSnap) != 0 {
		t.Fatalf("expected empty snapshot persisted, got %d lines", len(store.lastSnap))
	}
}

func TestStateItemsPriceExcludesTaxAndShipping(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	state := NewState("session-1", &recordingStore{}, nil)

	sindhri := testItem("Sindhri", "10.99")
	_ = state.Apply(ctx, AddItem{Item: sindhri})
	_ = state.Apply(ctx, AddItem{Item: sindhri})
	_ = state.Apply(ctx, AddItem{Item: sindhri})
	_ = state.Apply(ctx, AddItem{Item: testItem("Chaunsa", "12.99")})

	want := decimal.RequireFromString("45.96")
	if !state.ItemsPrice().Equal(want) {
		t.Fatalf("items price = %s, want %s", state.ItemsPrice(), want)
	}
}

func TestStateSeededFromSnapshot(t *testing.T) {
	t.Parallel()

	initial := []Item{
		{ProductID: uuid.New(), Name: "Langra", UnitPrice: decimal.RequireFromString("9.25"), Quantity: 2},
	}
	state := NewState("session-1", &recordingStore{}, initial)

	if state.TotalItems() != 2 {
		t.Fatalf("expected seeded quantity 2, got %d", state.TotalItems())
	}

	// Mutating the seed slice must not leak into the handle.
	initial[0].Quantity = 99
	if state.TotalItems() != 2 {
		t.Fatalf("seed slice aliased into state")
	}
}
