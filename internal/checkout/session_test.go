package checkout

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mangohub/mangostore-backend/pkg/enums"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
	"github.com/mangohub/mangostore-backend/pkg/types"
)

func validAddress() types.ShippingAddress {
	return types.ShippingAddress{
		Address:    "14 Orchard Road",
		City:       "Multan",
		PostalCode: "60000",
		Country:    "PK",
	}
}

func TestSessionWalksForward(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	session := NewSession(uuid.New(), now)
	if session.Step != enums.CheckoutStepShipping {
		t.Fatalf("expected shipping step, got %s", session.Step)
	}

	address := validAddress()
	if err := session.Next(NextInput{ShippingAddress: &address}, now); err != nil {
		t.Fatalf("shipping step failed: %v", err)
	}
	if session.Step != enums.CheckoutStepPayment {
		t.Fatalf("expected payment step, got %s", session.Step)
	}
	if session.ShippingAddress == nil || session.ShippingAddress.City != "Multan" {
		t.Fatalf("address not captured: %+v", session.ShippingAddress)
	}

	if err := session.Next(NextInput{PaymentMethod: enums.PaymentMethodJazzCash}, now); err != nil {
		t.Fatalf("payment step failed: %v", err)
	}
	if session.Step != enums.CheckoutStepReview {
		t.Fatalf("expected review step, got %s", session.Step)
	}
	if session.PaymentMethod != enums.PaymentMethodJazzCash {
		t.Fatalf("method not captured: %s", session.PaymentMethod)
	}
}

func TestSessionRejectsInvalidShippingAddress(t *testing.T) {
	t.Parallel()

	now := time.Now()
	session := NewSession(uuid.New(), now)

	err := session.Next(NextInput{}, now)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	partial := types.ShippingAddress{Address: "somewhere"}
	err = session.Next(NextInput{ShippingAddress: &partial}, now)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if session.Step != enums.CheckoutStepShipping {
		t.Fatalf("failed transition must not advance, got %s", session.Step)
	}
}

func TestSessionBlankPaymentMethodDefaultsToCOD(t *testing.T) {
	t.Parallel()

	now := time.Now()
	session := NewSession(uuid.New(), now)
	address := validAddress()
	if err := session.Next(NextInput{ShippingAddress: &address}, now); err != nil {
		t.Fatalf("shipping step failed: %v", err)
	}

	if err := session.Next(NextInput{}, now); err != nil {
		t.Fatalf("payment step failed: %v", err)
	}
	if session.PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("expected COD default, got %s", session.PaymentMethod)
	}
}

func TestSessionNextAtReviewRejected(t *testing.T) {
	t.Parallel()

	now := time.Now()
	session := NewSession(uuid.New(), now)
	address := validAddress()
	if err := session.Next(NextInput{ShippingAddress: &address}, now); err != nil {
		t.Fatalf("shipping step failed: %v", err)
	}
	if err := session.Next(NextInput{}, now); err != nil {
		t.Fatalf("payment step failed: %v", err)
	}

	err := session.Next(NextInput{}, now)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSessionBackKeepsCollectedData(t *testing.T) {
	t.Parallel()

	now := time.Now()
	session := NewSession(uuid.New(), now)
	address := validAddress()
	if err := session.Next(NextInput{ShippingAddress: &address}, now); err != nil {
		t.Fatalf("shipping step failed: %v", err)
	}
	if err := session.Next(NextInput{PaymentMethod: enums.PaymentMethodCOD}, now); err != nil {
		t.Fatalf("payment step failed: %v", err)
	}

	session.Back(now)
	if session.Step != enums.CheckoutStepPayment {
		t.Fatalf("expected payment step, got %s", session.Step)
	}
	session.Back(now)
	if session.Step != enums.CheckoutStepShipping {
		t.Fatalf("expected shipping step, got %s", session.Step)
	}
	// No-op at the first step.
	session.Back(now)
	if session.Step != enums.CheckoutStepShipping {
		t.Fatalf("expected shipping step, got %s", session.Step)
	}

	if session.ShippingAddress == nil || session.PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("collected data lost: %+v", session)
	}
}
