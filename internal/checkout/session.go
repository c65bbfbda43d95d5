package checkout

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mangohub/mangostore-backend/pkg/enums"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
	"github.com/mangohub/mangostore-backend/pkg/types"
)

// Session is one user's in-progress checkout. It accumulates the shipping
// address and payment method across steps and touches no cart or order state
// until Submit.
type Session struct {
	UserID          uuid.UUID              `json:"user_id"`
	Step            enums.CheckoutStep     `json:"step"`
	ShippingAddress *types.ShippingAddress `json:"shipping_address,omitempty"`
	PaymentMethod   enums.PaymentMethod    `json:"payment_method,omitempty"`
	StartedAt       time.Time              `json:"started_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// NextInput is the payload for the current step's forward transition.
// Shipping consumes the address; payment consumes the method.
type NextInput struct {
	ShippingAddress *types.ShippingAddress
	PaymentMethod   enums.PaymentMethod
}

// NewSession starts a fresh checkout at the shipping step.
func NewSession(userID uuid.UUID, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		Step:      enums.CheckoutStepShipping,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Next validates the step payload and advances one step. At the review step
// there is nothing left to collect; the session must be submitted instead.
func (s *Session) Next(input NextInput, now time.Time) error {
	switch s.Step {
	case enums.CheckoutStepShipping:
		if input.ShippingAddress == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
		}
		if err := input.ShippingAddress.Validate(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
		}
		address := *input.ShippingAddress
		s.ShippingAddress = &address
		s.Step = enums.CheckoutStepPayment

	case enums.CheckoutStepPayment:
		method := input.PaymentMethod
		if method == "" {
			method = enums.PaymentMethodCOD
		}
		if !method.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
		}
		s.PaymentMethod = method
		s.Step = enums.CheckoutStepReview

	case enums.CheckoutStepReview:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is ready for submission")

	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("unknown checkout step %q", s.Step))
	}

	s.UpdatedAt = now
	return nil
}

// Back steps one stage towards shipping, keeping collected data so the step
// can be replayed. At the shipping step it is a no-op.
func (s *Session) Back(now time.Time) {
	switch s.Step {
	case enums.CheckoutStepReview:
		s.Step = enums.CheckoutStepPayment
	case enums.CheckoutStepPayment:
		s.Step = enums.CheckoutStepShipping
	default:
		return
	}
	s.UpdatedAt = now
}
