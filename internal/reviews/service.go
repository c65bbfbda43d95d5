package reviews

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

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes product reviews. Every write refreshes the product's
// rating and review count in the same transaction.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateReviewInput) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]models.Review, error)
	Update(ctx context.Context, actor Actor, reviewID uuid.UUID, input UpdateReviewInput) (*models.Review, error)
	Delete(ctx context.Context, actor Actor, reviewID uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
	users    userLoader
}

// NewService builds a reviews service backed by the provided stack.
func NewService(repo Repository, tx txRunner, products productLoader, userRepo userLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user loader required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		users:    userRepo,
	}, nil
}

// Create posts a review. One review per user per product; the verified flag
// comes from the user's paid orders.
func (s *service) Create(ctx context.Context, actor Actor, input CreateReviewInput) (*models.Review, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByProductAndUser(ctx, product.ID, actor.UserID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}

	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	verified, err := s.repo.HasPaidPurchase(ctx, actor.UserID, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check purchase history")
	}

	review := &models.Review{
		ProductID:          product.ID,
		UserID:             actor.UserID,
		UserName:           user.Name,
		Rating:             input.Rating,
		Comment:            input.Comment,
		IsVerifiedPurchase: verified,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		created, err := txRepo.Create(ctx, review)
		if err != nil {
			return err
		}
		review = created
		return txRepo.RecomputeProductRating(ctx, product.ID)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	return review, nil
}

// ListByProduct returns a product's reviews, newest first.
func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return reviews, nil
}

// ListMine returns the actor's own reviews, newest first.
func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	reviews, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return reviews, nil
}

// Update edits the actor's own review.
func (s *service) Update(ctx context.Context, actor Actor, reviewID uuid.UUID, input UpdateReviewInput) (*models.Review, error) {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to edit this review")
	}

	if input.Rating != nil {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
		}
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		updated, err := txRepo.Update(ctx, review)
		if err != nil {
			return err
		}
		review = updated
		return txRepo.RecomputeProductRating(ctx, review.ProductID)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
	}

	return review, nil
}

// Delete removes a review. Owners delete their own; admins delete any.
func (s *service) Delete(ctx context.Context, actor Actor, reviewID uuid.UUID) error {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actor.UserID && !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to delete this review")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Delete(ctx, review.ID); err != nil {
			return err
		}
		return txRepo.RecomputeProductRating(ctx, review.ProductID)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}

	return nil
}

func (s *service) load(ctx context.Context, reviewID uuid.UUID) (*models.Review, error) {
	if reviewID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review id is required")
	}
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
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
