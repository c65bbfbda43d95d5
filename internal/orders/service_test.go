package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mangohub/mangostore-backend/internal/catalog"
	"github.com/mangohub/mangostore-backend/pkg/db/models"
	"github.com/mangohub/mangostore-backend/pkg/enums"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
	"github.com/mangohub/mangostore-backend/pkg/pagination"
	"github.com/mangohub/mangostore-backend/pkg/types"
)

type stubOrderRepo struct {
	order   *models.Order
	findErr error
	created *models.Order
	updated *models.Order
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	s.created = order
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) List(ctx context.Context, params pagination.Params) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.updated = order
	return order, nil
}

type stubStockRepo struct {
	products   map[uuid.UUID]*models.Product
	decrements map[uuid.UUID]int
	increments map[uuid.UUID]int
}

func newStubStockRepo(products ...*models.Product) *stubStockRepo {
	m := map[uuid.UUID]*models.Product{}
	for _, p := range products {
		m[p.ID] = p
	}
	return &stubStockRepo{
		products:   m,
		decrements: map[uuid.UUID]int{},
		increments: map[uuid.UUID]int{},
	}
}

func (s *stubStockRepo) WithTx(tx *gorm.DB) catalog.Repository { return s }

func (s *stubStockRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStockRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubStockRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubStockRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubStockRepo) List(ctx context.Context, input catalog.ListInput) ([]models.Product, error) {
	return nil, nil
}

func (s *stubStockRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	p, ok := s.products[id]
	if !ok || p.CountInStock < qty {
		return false, nil
	}
	p.CountInStock -= qty
	s.decrements[id] += qty
	return true, nil
}

func (s *stubStockRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	if p, ok := s.products[id]; ok {
		p.CountInStock += qty
	}
	s.increments[id] += qty
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository, stock catalog.Repository) *service {
	t.Helper()
	svc, err := NewService(repo, stock, stubTxRunner{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	typed := svc.(*service)
	typed.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return typed
}

func mango(name, price string, stock int) *models.Product {
	return &models.Product{
		ID:           uuid.New(),
		Name:         name,
		Price:        decimal.RequireFromString(price),
		CountInStock: stock,
	}
}

func testAddress() types.ShippingAddress {
	return types.ShippingAddress{
		Address:    "14 Orchard Road",
		City:       "Multan",
		PostalCode: "60000",
		Country:    "PK",
	}
}

func customer(userID uuid.UUID) Actor {
	return Actor{UserID: userID, Role: enums.UserRoleCustomer}
}

func admin() Actor {
	return Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
}

func TestCreateComputesBreakdown(t *testing.T) {
	t.Parallel()

	sindhri := mango("Sindhri", "10.99", 10)
	chaunsa := mango("Chaunsa", "12.99", 10)
	repo := &stubOrderRepo{}
	svc := newTestService(t, repo, newStubStockRepo(sindhri, chaunsa))

	order, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		Items: []OrderItemInput{
			{ProductID: sindhri.ID, Quantity: 3},
			{ProductID: chaunsa.ID, Quantity: 1},
		},
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !order.ItemsPrice.Equal(decimal.RequireFromString("45.96")) {
		t.Fatalf("items price = %s, want 45.96", order.ItemsPrice)
	}
	if !order.TaxPrice.Equal(decimal.RequireFromString("4.60")) {
		t.Fatalf("tax price = %s, want 4.60", order.TaxPrice)
	}
	if !order.ShippingPrice.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("shipping price = %s, want 10", order.ShippingPrice)
	}
	if !order.TotalPrice.Equal(decimal.RequireFromString("60.56")) {
		t.Fatalf("total price = %s, want 60.56", order.TotalPrice)
	}
	if order.Status != enums.OrderStatusProcessing {
		t.Fatalf("status = %s, want Processing", order.Status)
	}
	if order.PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("payment method = %s, want default COD", order.PaymentMethod)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected two item snapshots, got %d", len(order.Items))
	}
}

func TestCreateRejectsEmptyOrder(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubOrderRepo{}, newStubStockRepo())

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		ShippingAddress: testAddress(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateInsufficientStockRejectsWholeOrder(t *testing.T) {
	t.Parallel()

	plenty := mango("Sindhri", "10.99", 10)
	scarce := mango("Chaunsa", "12.99", 1)
	repo := &stubOrderRepo{}
	stock := newStubStockRepo(plenty, scarce)
	svc := newTestService(t, repo, stock)

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		Items: []OrderItemInput{
			{ProductID: plenty.ID, Quantity: 2},
			{ProductID: scarce.ID, Quantity: 5},
		},
		ShippingAddress: testAddress(),
	})

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.created != nil {
		t.Fatal("no order row should be written")
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["available"] != 1 {
		t.Fatalf("expected available 1 in details, got %v", details["available"])
	}
}

func TestCreateUnknownProduct(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubOrderRepo{}, newStubStockRepo())

	_, err := svc.Create(context.Background(), uuid.New(), CreateOrderInput{
		Items:           []OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	paidAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubOrderRepo{order: &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		IsPaid: true,
		PaidAt: &paidAt,
		PaymentResult: &models.PaymentResult{
			TransactionID: "cod-1754006400",
			Status:        "COMPLETED",
		},
		Status: enums.OrderStatusProcessing,
	}}
	svc := newTestService(t, repo, newStubStockRepo())

	order, err := svc.MarkPaid(context.Background(), customer(userID), repo.order.ID, PaymentInput{
		TransactionID: "cod-9999999999",
		Status:        "COMPLETED",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.PaymentResult.TransactionID != "cod-1754006400" {
		t.Fatalf("payment result overwritten: %s", order.PaymentResult.TransactionID)
	}
	if repo.updated != nil {
		t.Fatal("no write should happen for an already-paid order")
	}
}

func TestMarkPaidSetsFields(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := &stubOrderRepo{order: &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: enums.OrderStatusProcessing,
	}}
	svc := newTestService(t, repo, newStubStockRepo())

	order, err := svc.MarkPaid(context.Background(), customer(userID), repo.order.ID, PaymentInput{
		TransactionID: "cod-1756555200",
		Status:        "COMPLETED",
		EmailAddress:  "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.IsPaid || order.PaidAt == nil {
		t.Fatalf("paid fields not set: %+v", order)
	}
	if order.PaymentResult.Status != "COMPLETED" {
		t.Fatalf("payment status = %s", order.PaymentResult.Status)
	}
}

func TestMarkDeliveredRejectedFromCancelled(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{order: &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: enums.OrderStatusCancelled,
	}}
	svc := newTestService(t, repo, newStubStockRepo())

	_, err := svc.MarkDelivered(context.Background(), admin(), repo.order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkDeliveredRequiresAdmin(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := &stubOrderRepo{order: &models.Order{ID: uuid.New(), UserID: userID, Status: enums.OrderStatusProcessing}}
	svc := newTestService(t, repo, newStubStockRepo())

	_, err := svc.MarkDelivered(context.Background(), customer(userID), repo.order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateStatusTerminalRejection(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{order: &models.Order{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Status:      enums.OrderStatusDelivered,
		IsDelivered: true,
	}}
	svc := newTestService(t, repo, newStubStockRepo())

	_, err := svc.UpdateStatus(context.Background(), admin(), repo.order.ID, enums.OrderStatusShipped)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-asserting the current status is a harmless no-op.
	order, err := svc.UpdateStatus(context.Background(), admin(), repo.order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updated != nil {
		t.Fatal("no-op should not write")
	}
	if order.Status != enums.OrderStatusDelivered {
		t.Fatalf("status = %s", order.Status)
	}
}

func TestUpdateStatusDeliveredSetsDeliveryFields(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{order: &models.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: enums.OrderStatusShipped,
	}}
	svc := newTestService(t, repo, newStubStockRepo())

	order, err := svc.UpdateStatus(context.Background(), admin(), repo.order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.IsDelivered || order.DeliveredAt == nil {
		t.Fatalf("delivery fields not set: %+v", order)
	}
}

func TestCancelRestoresStock(t *testing.T) {
	t.Parallel()

	product := mango("Sindhri", "10.99", 5)
	userID := uuid.New()
	repo := &stubOrderRepo{order: &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: enums.OrderStatusProcessing,
		Items: []models.OrderItem{
			{ProductID: product.ID, Name: product.Name, UnitPrice: product.Price, Quantity: 2},
		},
	}}
	stock := newStubStockRepo(product)
	svc := newTestService(t, repo, stock)

	order, err := svc.Cancel(context.Background(), customer(userID), repo.order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != enums.OrderStatusCancelled {
		t.Fatalf("status = %s, want Cancelled", order.Status)
	}
	if product.CountInStock != 7 {
		t.Fatalf("stock = %d, want 7", product.CountInStock)
	}
}

func TestCancelDeliveredRejected(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := &stubOrderRepo{order: &models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      enums.OrderStatusDelivered,
		IsDelivered: true,
	}}
	svc := newTestService(t, repo, newStubStockRepo())

	_, err := svc.Cancel(context.Background(), customer(userID), repo.order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	if typed.Message() != "cannot cancel delivered order" {
		t.Fatalf("message = %q", typed.Message())
	}
}

func TestCancelTwiceRejected(t *testing.T) {
	t.Parallel()

	product := mango("Sindhri", "10.99", 5)
	userID := uuid.New()
	repo := &stubOrderRepo{order: &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: enums.OrderStatusCancelled,
		Items: []models.OrderItem{
			{ProductID: product.ID, Quantity: 2},
		},
	}}
	stock := newStubStockRepo(product)
	svc := newTestService(t, repo, stock)

	_, err := svc.Cancel(context.Background(), customer(userID), repo.order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	if stock.increments[product.ID] != 0 {
		t.Fatal("stock must not be restored twice")
	}
}

func TestGetByIDOwnerOrAdminGuard(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	repo := &stubOrderRepo{order: &models.Order{ID: uuid.New(), UserID: owner}}
	svc := newTestService(t, repo, newStubStockRepo())

	if _, err := svc.GetByID(context.Background(), customer(owner), repo.order.ID); err != nil {
		t.Fatalf("owner should read own order: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), admin(), repo.order.ID); err != nil {
		t.Fatalf("admin should read any order: %v", err)
	}
	_, err := svc.GetByID(context.Background(), customer(uuid.New()), repo.order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error: %v", err)
	}
}
