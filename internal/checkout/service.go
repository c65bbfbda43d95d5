package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mangohub/mangostore-backend/internal/orders"
	"github.com/mangohub/mangostore-backend/internal/pricing"
	"github.com/mangohub/mangostore-backend/pkg/db/models"
	"github.com/mangohub/mangostore-backend/pkg/enums"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
)

type clock func() time.Time

type cartAccess interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
}

type orderCreator interface {
	Create(ctx context.Context, userID uuid.UUID, input orders.CreateOrderInput) (*models.Order, error)
}

// Service drives the three-step checkout. Steps collect data into a stored
// session; nothing outside the session changes until Submit.
type Service interface {
	Start(ctx context.Context, userID uuid.UUID) (*Session, error)
	Get(ctx context.Context, userID uuid.UUID) (*Session, error)
	Next(ctx context.Context, userID uuid.UUID, input NextInput) (*Session, error)
	Back(ctx context.Context, userID uuid.UUID) (*Session, error)
	Review(ctx context.Context, userID uuid.UUID) (*Summary, error)
	Submit(ctx context.Context, userID uuid.UUID) (*models.Order, error)
}

// Summary is the review-step view: the cart lines priced exactly the way the
// submitted order will be.
type Summary struct {
	Session   *Session          `json:"session"`
	Items     []models.CartItem `json:"items"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

type service struct {
	store  SessionStore
	cart   cartAccess
	orders orderCreator
	now    clock
}

// NewService builds a checkout service backed by the provided stack.
func NewService(store SessionStore, cartSvc cartAccess, orderSvc orderCreator) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	return &service{
		store:  store,
		cart:   cartSvc,
		orders: orderSvc,
		now:    time.Now,
	}, nil
}

// Start opens a fresh session at the shipping step, replacing any session the
// user already had.
func (s *service) Start(ctx context.Context, userID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	session := NewSession(userID, s.now())
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns the user's active session.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.load(ctx, userID)
}

// Next advances the session one step with the provided payload.
func (s *service) Next(ctx context.Context, userID uuid.UUID, input NextInput) (*Session, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	session, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := session.Next(input, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Back moves the session one step towards shipping.
func (s *service) Back(ctx context.Context, userID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	session, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	session.Back(s.now())
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Review prices the current cart for the review step.
func (s *service) Review(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	session, err := s.requireReview(ctx, userID)
	if err != nil {
		return nil, err
	}

	record, err := s.cart.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := make([]pricing.LineItem, 0, len(record.Items))
	for _, item := range record.Items {
		lines = append(lines, pricing.LineItem{
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	return &Summary{
		Session:   session,
		Items:     record.Items,
		Breakdown: pricing.ComputePrices(lines),
	}, nil
}

// Submit turns the reviewed cart into an order. On failure the cart and the
// session survive unchanged so the user can retry after fixing the problem.
func (s *service) Submit(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	session, err := s.requireReview(ctx, userID)
	if err != nil {
		return nil, err
	}

	record, err := s.cart.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := make([]orders.OrderItemInput, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, orders.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := s.orders.Create(ctx, userID, orders.CreateOrderInput{
		Items:           items,
		ShippingAddress: *session.ShippingAddress,
		PaymentMethod:   session.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	// The order exists from here on; cleanup failures must not fail the
	// checkout or invite a duplicate submission.
	_, _ = s.cart.Clear(ctx, userID)
	_ = s.store.Drop(ctx, userID)

	return order, nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return session, nil
}

func (s *service) requireReview(ctx context.Context, userID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	session, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Step != enums.CheckoutStepReview {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not at the review step").
			WithDetails(map[string]any{"current": session.Step})
	}
	return session, nil
}
