package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mangohub/mangostore-backend/internal/orders"
	"github.com/mangohub/mangostore-backend/pkg/db/models"
	"github.com/mangohub/mangostore-backend/pkg/enums"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
)

const codStatusCompleted = "COMPLETED"

type clock func() time.Time

type orderPayer interface {
	MarkPaid(ctx context.Context, actor orders.Actor, id uuid.UUID, payment orders.PaymentInput) (*models.Order, error)
}

// Method describes one storefront payment option.
type Method struct {
	Name   enums.PaymentMethod `json:"name"`
	Active bool                `json:"active"`
}

// Service lists payment options and settles cash-on-delivery orders. Only
// COD is live; the gateway methods are surfaced but inactive.
type Service interface {
	ListMethods() []Method
	ConfirmCOD(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	orders orderPayer
	now    clock
}

// NewService builds a payments service delegating settlement to the order
// lifecycle.
func NewService(orderSvc orderPayer) (Service, error) {
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	return &service{orders: orderSvc, now: time.Now}, nil
}

// ListMethods returns the static payment options.
func (s *service) ListMethods() []Method {
	return []Method{
		{Name: enums.PaymentMethodCOD, Active: true},
		{Name: enums.PaymentMethodJazzCash, Active: false},
		{Name: enums.PaymentMethodEasyPaisa, Active: false},
		{Name: enums.PaymentMethodBankTransfer, Active: false},
	}
}

// ConfirmCOD records cash collection against an order. Admin only; the
// courier reports collection through the back office.
func (s *service) ConfirmCOD(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	now := s.now()
	return s.orders.MarkPaid(ctx, actor, orderID, orders.PaymentInput{
		TransactionID: fmt.Sprintf("cod-%d", now.Unix()),
		Status:        codStatusCompleted,
		UpdateTime:    now.UTC().Format(time.RFC3339),
	})
}
