package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one product line in a client cart. Product id is unique per cart.
type Item struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Action is the closed set of cart mutations. Nothing outside this package
// can add a variant.
type Action interface {
	isAction()
}

// AddItem appends the item with quantity 1, or bumps the existing line by 1.
type AddItem struct {
	Item Item
}

// RemoveItem drops the line for the product. Unknown ids are a silent no-op.
type RemoveItem struct {
	ProductID uuid.UUID
}

// UpdateQuantity sets the line quantity, clamped to a minimum of 1.
// Unknown ids are a silent no-op.
type UpdateQuantity struct {
	ProductID uuid.UUID
	Quantity  int
}

// Clear empties the cart.
type Clear struct{}

func (AddItem) isAction()        {}
func (RemoveItem) isAction()     {}
func (UpdateQuantity) isAction() {}
func (Clear) isAction()          {}

// SnapshotStore persists the full cart snapshot after each mutation.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, items []Item) error
}

// State is an explicit client cart handle. Items keep insertion order and
// the reducer itself never fails; only snapshot persistence can error.
type State struct {
	sessionID string
	items     []Item
	store     SnapshotStore
}

// NewState builds a cart handle seeded with the provided items.
func NewState(sessionID string, store SnapshotStore, initial []Item) *State {
	items := make([]Item, len(initial))
	copy(items, initial)
	return &State{
		sessionID: sessionID,
		items:     items,
		store:     store,
	}
}

// Apply runs one action against the cart and synchronously persists the
// resulting snapshot. The last write wins on concurrent sessions.
func (s *State) Apply(ctx context.Context, action Action) error {
	switch a := action.(type) {
	case AddItem:
		s.addItem(a.Item)
	case RemoveItem:
		s.removeItem(a.ProductID)
	case UpdateQuantity:
		s.updateQuantity(a.ProductID, a.Quantity)
	case Clear:
		s.items = nil
	}

	if s.store == nil {
		return nil
	}
	return s.store.Save(ctx, s.sessionID, s.Items())
}

func (s *State) addItem(item Item) {
	for i := range s.items {
		if s.items[i].ProductID == item.ProductID {
			s.items[i].Quantity++
			return
		}
	}
	item.Quantity = 1
	s.items = append(s.items, item)
}

func (s *State) removeItem(productID uuid.UUID) {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *State) updateQuantity(productID uuid.UUID, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			return
		}
	}
}

// Items returns a copy of the cart lines in insertion order.
func (s *State) Items() []Item {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// TotalItems is the summed quantity across all lines.
func (s *State) TotalItems() int {
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// ItemsPrice is the cart-level subtotal. Tax and shipping are checkout
// concerns and never part of this figure.
func (s *State) ItemsPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2)
}
