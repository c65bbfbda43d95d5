package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mangohub/mangostore-backend/pkg/db/models"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
)

type stubCartRepo struct {
	record     *models.CartRecord
	findErr    error
	created    *models.CartRecord
	upserted   []*models.CartItem
	deleted    []uuid.UUID
	replaced   [][]models.CartItem
	replaceErr error
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.record == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.record, nil
}

func (s *stubCartRepo) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	record.ID = uuid.New()
	s.created = record
	s.record = record
	return record, nil
}

func (s *stubCartRepo) UpsertItem(ctx context.Context, item *models.CartItem) error {
	s.upserted = append(s.upserted, item)
	return nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	s.deleted = append(s.deleted, productID)
	return nil
}

func (s *stubCartRepo) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replaced = append(s.replaced, items)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type productLoaderFunc func(ctx context.Context, id uuid.UUID) (*models.Product, error)

func (f productLoaderFunc) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return f(ctx, id)
}

func newTestService(t *testing.T, repo Repository, products productLoader) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, products)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func stockedProduct(stock int) *models.Product {
	return &models.Product{
		ID:           uuid.New(),
		Name:         "Sindhri",
		Price:        decimal.RequireFromString("10.99"),
		CountInStock: stock,
	}
}

func TestServiceGetAutoCreates(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc := newTestService(t, repo, productLoaderFunc(func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
		return nil, gorm.ErrRecordNotFound
	}))

	userID := uuid.New()
	record, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.created == nil {
		t.Fatal("expected cart auto-creation")
	}
	if record.UserID != userID {
		t.Fatalf("cart bound to wrong user: %s", record.UserID)
	}
	if len(record.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(record.Items))
	}
}

func TestServiceAddItemInsufficientStock(t *testing.T) {
	t.Parallel()

	product := stockedProduct(2)
	repo := &stubCartRepo{}
	svc := newTestService(t, repo, productLoaderFunc(func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
		return product, nil
	}))

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 3})
	if err == nil {
		t.Fatal("expected error for insufficient stock")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error code: %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Fatal("no item should be written on rejection")
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["available"] != 2 {
		t.Fatalf("expected available 2 in details, got %v", details["available"])
	}
}

func TestServiceAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{}
	svc := newTestService(t, repo, productLoaderFunc(func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
		return nil, gorm.ErrRecordNotFound
	}))

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: uuid.New(), Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceAddItemSetsQuantity(t *testing.T) {
	t.Parallel()

	product := stockedProduct(10)
	repo := &stubCartRepo{}
	svc := newTestService(t, repo, productLoaderFunc(func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
		return product, nil
	}))

	if _, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}
	item := repo.upserted[0]
	if item.Quantity != 4 {
		t.Fatalf("quantity = %d, want 4", item.Quantity)
	}
	if !item.UnitPrice.Equal(product.Price) {
		t.Fatalf("unit price = %s, want %s", item.UnitPrice, product.Price)
	}
}

func TestServiceSyncRejectsWholeSetOnOneBadLine(t *testing.T) {
	t.Parallel()

	inStock := stockedProduct(10)
	outOfStock := stockedProduct(0)
	repo := &stubCartRepo{}
	svc := newTestService(t, repo, productLoaderFunc(func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
		if id == inStock.ID {
			return inStock, nil
		}
		return outOfStock, nil
	}))

	_, err := svc.Sync(context.Background(), uuid.New(), []SyncItemInput{
		{ProductID: inStock.ID, Quantity: 1},
		{ProductID: outOfStock.ID, Quantity: 1},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.replaced) != 0 {
		t.Fatal("nothing should be written when one line fails validation")
	}
}

func TestServiceSyncRejectsDuplicateProducts(t *testing.T) {
	t.Parallel()

	product := stockedProduct(10)
	repo := &stubCartRepo{}
	svc := newTestService(t, repo, productLoaderFunc(func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
		return product, nil
	}))

	_, err := svc.Sync(context.Background(), uuid.New(), []SyncItemInput{
		{ProductID: product.ID, Quantity: 1},
		{ProductID: product.ID, Quantity: 2},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceRemoveItemUnknownIsNoop(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{record: &models.CartRecord{ID: uuid.New(), UserID: uuid.New()}}
	svc := newTestService(t, repo, productLoaderFunc(func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
		return nil, gorm.ErrRecordNotFound
	}))

	if _, err := svc.RemoveItem(context.Background(), repo.record.UserID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected delete to be attempted")
	}
}
