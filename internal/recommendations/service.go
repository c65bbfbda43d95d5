package recommendations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mangohub/mangostore-backend/pkg/db/models"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
)

const (
	defaultLimit     = 10
	maxLimit         = 50
	trendingWindow   = 7 * 24 * time.Hour
	categoryLookback = 5
)

type clock func() time.Time

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service surfaces product recommendations driven by purchases and searches.
type Service interface {
	TrackSearch(ctx context.Context, userID uuid.UUID, query, category string) error
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.SearchHistory, error)
	ClearHistory(ctx context.Context, userID uuid.UUID) error
	Personalized(ctx context.Context, userID uuid.UUID, limit int) ([]models.Product, error)
	Related(ctx context.Context, productID uuid.UUID, limit int) ([]models.Product, error)
	Trending(ctx context.Context, limit int) ([]models.Product, error)
}

type service struct {
	repo     Repository
	products productLoader
	now      clock
}

// NewService builds a recommendations service backed by the provided stack.
func NewService(repo Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("recommendations repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		repo:     repo,
		products: products,
		now:      time.Now,
	}, nil
}

// TrackSearch records one storefront search for the user.
func (s *service) TrackSearch(ctx context.Context, userID uuid.UUID, query, category string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}

	entry := &models.SearchHistory{
		UserID:   userID,
		Query:    query,
		Category: strings.TrimSpace(category),
	}
	if err := s.repo.TrackSearch(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "track search")
	}
	return nil
}

// History returns the user's recent searches, newest first.
func (s *service) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.SearchHistory, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	entries, err := s.repo.ListSearches(ctx, userID, normalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list search history")
	}
	return entries, nil
}

// ClearHistory drops the user's search history.
func (s *service) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.repo.ClearSearches(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear search history")
	}
	return nil
}

// Personalized recommends in-stock products the user has not bought yet,
// preferring their searched categories and topping up with popular products.
func (s *service) Personalized(ctx context.Context, userID uuid.UUID, limit int) ([]models.Product, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	limit = normalizeLimit(limit)

	purchased, err := s.repo.PurchasedProductIDs(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase history")
	}
	categories, err := s.repo.SearchedCategories(ctx, userID, categoryLookback)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load searched categories")
	}

	recommended, err := s.repo.TopRatedInCategories(ctx, categories, purchased, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category recommendations")
	}

	if len(recommended) < limit {
		exclude := append([]uuid.UUID{}, purchased...)
		for _, product := range recommended {
			exclude = append(exclude, product.ID)
		}
		popular, err := s.repo.Popular(ctx, exclude, limit-len(recommended))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load popular products")
		}
		recommended = append(recommended, popular...)
	}

	return recommended, nil
}

// Related returns in-stock products from the same category.
func (s *service) Related(ctx context.Context, productID uuid.UUID, limit int) ([]models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	related, err := s.repo.Related(ctx, product.Category, product.ID, normalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load related products")
	}
	return related, nil
}

// Trending ranks products by paid sales over the last seven days.
func (s *service) Trending(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := s.repo.Trending(ctx, s.now().Add(-trendingWindow), normalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trending products")
	}
	return products, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
