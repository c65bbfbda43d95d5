package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mangohub/mangostore-backend/internal/catalog"
	"github.com/mangohub/mangostore-backend/internal/pricing"
	"github.com/mangohub/mangostore-backend/pkg/db/models"
	"github.com/mangohub/mangostore-backend/pkg/enums"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
	"github.com/mangohub/mangostore-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type clock func() time.Time

// Service exposes the order lifecycle.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error)
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context, actor Actor, params pagination.Params) ([]models.Order, error)
	MarkPaid(ctx context.Context, actor Actor, id uuid.UUID, payment PaymentInput) (*models.Order, error)
	MarkDelivered(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error)
}

type service struct {
	repo    Repository
	catalog catalog.Repository
	tx      txRunner
	now     clock
}

// NewService builds an order service backed by the provided stack.
func NewService(repo Repository, catalogRepo catalog.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		catalog: catalogRepo,
		tx:      tx,
		now:     time.Now,
	}, nil
}

// Create validates every line, snapshots prices, and decrements stock inside
// one transaction. Any failing line rolls the whole order back; there is no
// partial decrement.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	method := input.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodCOD
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	seen := map[uuid.UUID]struct{}{}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in order")
		}
		seen[item.ProductID] = struct{}{}
	}

	var created *models.Order
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCatalog := s.catalog.WithTx(tx)
		txOrders := s.repo.WithTx(tx)

		lines := make([]pricing.LineItem, 0, len(input.Items))
		orderItems := make([]models.OrderItem, 0, len(input.Items))

		for _, item := range input.Items {
			product, err := txCatalog.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
						WithDetails(map[string]any{"product_id": item.ProductID})
				}
				return err
			}

			ok, err := txCatalog.DecrementStock(ctx, product.ID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for product").
					WithDetails(map[string]any{
						"product_id": product.ID,
						"available":  product.CountInStock,
						"requested":  item.Quantity,
					})
			}

			lines = append(lines, pricing.LineItem{
				ProductID: product.ID,
				UnitPrice: product.Price,
				Quantity:  item.Quantity,
			})
			orderItems = append(orderItems, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Image:     product.Image,
				UnitPrice: product.Price,
				Quantity:  item.Quantity,
			})
		}

		breakdown := pricing.ComputePrices(lines)

		order := &models.Order{
			UserID:          userID,
			ShippingAddress: input.ShippingAddress,
			PaymentMethod:   method,
			ItemsPrice:      breakdown.ItemsPrice,
			TaxPrice:        breakdown.TaxPrice,
			ShippingPrice:   breakdown.ShippingPrice,
			TotalPrice:      breakdown.TotalPrice,
			Status:          enums.OrderStatusProcessing,
			Items:           orderItems,
		}

		var err error
		created, err = txOrders.Create(ctx, order)
		return err
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	return created, nil
}

// GetByID loads an order for its owner or an admin.
func (s *service) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListMine returns the actor's own orders, newest first.
func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// ListAll pages through every order. Admin only.
func (s *service) ListAll(ctx context.Context, actor Actor, params pagination.Params) ([]models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	orders, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// MarkPaid records the payment result. Paying an already-paid order is a
// no-op that returns the current state.
func (s *service) MarkPaid(ctx context.Context, actor Actor, id uuid.UUID, payment PaymentInput) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(actor, order); err != nil {
		return nil, err
	}

	if order.IsPaid {
		return order, nil
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot pay cancelled order")
	}
	if strings.TrimSpace(payment.TransactionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}

	now := s.now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = &models.PaymentResult{
		TransactionID: payment.TransactionID,
		Status:        payment.Status,
		UpdateTime:    payment.UpdateTime,
		EmailAddress:  payment.EmailAddress,
	}

	return s.save(ctx, order)
}

// MarkDelivered stamps the delivery fields and moves the status to Delivered.
func (s *service) MarkDelivered(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot deliver cancelled order")
	}
	if order.IsDelivered {
		return order, nil
	}

	now := s.now()
	order.IsDelivered = true
	order.DeliveredAt = &now
	order.Status = enums.OrderStatusDelivered

	return s.save(ctx, order)
}

// UpdateStatus moves the order to the requested status. Terminal states only
// accept a repeat of themselves, which is a no-op.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, status)).
			WithDetails(map[string]any{"current": order.Status, "requested": status})
	}
	if status == enums.OrderStatusCancelled {
		return s.Cancel(ctx, actor, id)
	}

	if status == enums.OrderStatusDelivered {
		now := s.now()
		order.IsDelivered = true
		order.DeliveredAt = &now
	}
	order.Status = status

	return s.save(ctx, order)
}

// Cancel restores stock for every line and marks the order Cancelled.
// Delivered orders cannot be cancelled; cancelling twice is rejected so
// stock is never restored more than once.
func (s *service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(actor, order); err != nil {
		return nil, err
	}

	if order.IsDelivered || order.Status == enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot cancel delivered order")
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already cancelled")
	}

	var cancelled *models.Order
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCatalog := s.catalog.WithTx(tx)
		txOrders := s.repo.WithTx(tx)

		for _, item := range order.Items {
			if err := txCatalog.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		order.Status = enums.OrderStatusCancelled
		var err error
		cancelled, err = txOrders.Update(ctx, order)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}

	return cancelled, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) save(ctx context.Context, order *models.Order) (*models.Order, error) {
	saved, err := s.repo.Update(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	return saved, nil
}

func (s *service) requireOwnerOrAdmin(actor Actor, order *models.Order) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.UserID != uuid.Nil && actor.UserID == order.UserID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to access this order")
}
