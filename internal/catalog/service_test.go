package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mangohub/mangostore-backend/pkg/db/models"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
)

type stubCatalogRepo struct {
	product *models.Product
	findErr error
	created *models.Product
	updated *models.Product
	deleted []uuid.UUID
	listed  []models.Product
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.product == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.product, nil
}

func (s *stubCatalogRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.created = product
	return product, nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.updated = product
	return product, nil
}

func (s *stubCatalogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCatalogRepo) List(ctx context.Context, input ListInput) ([]models.Product, error) {
	return s.listed, nil
}

func (s *stubCatalogRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	return false, nil
}

func (s *stubCatalogRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return nil
}

func TestServiceGetProductNotFound(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubCatalogRepo{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceCreateProductValidation(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{Name: "  "})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got: %v", err)
	}

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Sindhri",
		Price: decimal.RequireFromString("-1"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got: %v", err)
	}
	if repo.created != nil {
		t.Fatal("nothing should be persisted on validation failure")
	}
}

func TestServiceCreateProductRoundsPrice(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Sindhri",
		Price: decimal.RequireFromString("10.999"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.Price.Equal(decimal.RequireFromString("11.00")) {
		t.Fatalf("price = %s, want 11.00", created.Price)
	}
}

func TestServiceUpdateProductPartial(t *testing.T) {
	t.Parallel()

	existing := &models.Product{
		ID:           uuid.New(),
		Name:         "Sindhri",
		Category:     "premium",
		Price:        decimal.RequireFromString("10.99"),
		CountInStock: 5,
	}
	repo := &stubCatalogRepo{product: existing}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stock := 8
	updated, err := svc.UpdateProduct(context.Background(), existing.ID, UpdateProductInput{CountInStock: &stock})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.CountInStock != 8 {
		t.Fatalf("stock = %d, want 8", updated.CountInStock)
	}
	if updated.Name != "Sindhri" || updated.Category != "premium" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestServiceDeleteProductMissing(t *testing.T) {
	t.Parallel()

	repo := &stubCatalogRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = svc.DeleteProduct(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("delete should not reach the repository")
	}
}
