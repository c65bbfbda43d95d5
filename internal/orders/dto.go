package orders

import (
	"github.com/google/uuid"

	"github.com/mangohub/mangostore-backend/pkg/enums"
	"github.com/mangohub/mangostore-backend/pkg/types"
)

// Actor identifies who is invoking an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// OrderItemInput is one requested product line at order creation.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress types.ShippingAddress
	PaymentMethod   enums.PaymentMethod
}

// PaymentInput records the gateway confirmation for MarkPaid.
type PaymentInput struct {
	TransactionID string
	Status        string
	UpdateTime    string
	EmailAddress  string
}
