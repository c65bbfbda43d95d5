package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mangohub/mangostore-backend/pkg/db/models"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the server-held cart for signed-in users.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	Sync(ctx context.Context, userID uuid.UUID, items []SyncItemInput) (*models.CartRecord, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
	}, nil
}

// AddItemInput sets a product line to the requested quantity.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// SyncItemInput is one line of a client snapshot pushed to the server.
type SyncItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// Get returns the user's cart, creating an empty one on first access.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	record, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	created, err := s.repo.Create(ctx, &models.CartRecord{UserID: userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

// AddItem validates the product and stock, then sets the line quantity.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product.CountInStock < input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for product").
			WithDetails(map[string]any{
				"product_id": product.ID,
				"available":  product.CountInStock,
				"requested":  input.Quantity,
			})
	}

	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		CartID:    record.ID,
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.Image,
		UnitPrice: product.Price,
		Quantity:  input.Quantity,
	}
	if err := s.repo.UpsertItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart item")
	}

	return s.reload(ctx, userID)
}

// RemoveItem deletes the product line. Unknown products are a no-op.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, record.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}

	return s.reload(ctx, userID)
}

// Clear drops every line from the cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceItems(ctx, record.ID, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}

	return s.reload(ctx, userID)
}

// Sync replaces the whole item set from a client snapshot. Every line is
// validated before anything is written; one bad line rejects the sync.
func (s *service) Sync(ctx context.Context, userID uuid.UUID, inputs []SyncItemInput) (*models.CartRecord, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	seen := map[uuid.UUID]struct{}{}
	items := make([]models.CartItem, 0, len(inputs))
	for _, input := range inputs {
		if input.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if input.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		if _, dup := seen[input.ProductID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in cart")
		}
		seen[input.ProductID] = struct{}{}

		product, err := s.loadProduct(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		if product.CountInStock < input.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for product").
				WithDetails(map[string]any{
					"product_id": product.ID,
					"available":  product.CountInStock,
					"requested":  input.Quantity,
				})
		}

		items = append(items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			UnitPrice: product.Price,
			Quantity:  input.Quantity,
		})
	}

	record, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceItems(ctx, record.ID, items)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync cart")
	}

	return s.reload(ctx, userID)
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) reload(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return record, nil
}
