package recommendations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mangohub/mangostore-backend/pkg/db/models"
)

// Repository covers the search history plus the product queries that drive
// recommendations.
type Repository interface {
	TrackSearch(ctx context.Context, entry *models.SearchHistory) error
	ListSearches(ctx context.Context, userID uuid.UUID, limit int) ([]models.SearchHistory, error)
	ClearSearches(ctx context.Context, userID uuid.UUID) error
	SearchedCategories(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)
	PurchasedProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	TopRatedInCategories(ctx context.Context, categories []string, exclude []uuid.UUID, limit int) ([]models.Product, error)
	Popular(ctx context.Context, exclude []uuid.UUID, limit int) ([]models.Product, error)
	Related(ctx context.Context, category string, excludeID uuid.UUID, limit int) ([]models.Product, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a recommendations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) TrackSearch(ctx context.Context, entry *models.SearchHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListSearches(ctx context.Context, userID uuid.UUID, limit int) ([]models.SearchHistory, error) {
	var entries []models.SearchHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ClearSearches(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.SearchHistory{}, "user_id = ?", userID).Error
}

// SearchedCategories returns the user's recently searched categories, most
// recent first.
func (r *repository) SearchedCategories(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.SearchHistory{}).
		Where("user_id = ? AND category <> ''", userID).
		Group("category").
		Order("MAX(created_at) DESC").
		Limit(limit).
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) PurchasedProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ?", userID).
		Distinct().
		Pluck("order_items.product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) TopRatedInCategories(ctx context.Context, categories []string, exclude []uuid.UUID, limit int) ([]models.Product, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category IN ?", categories).
		Where("count_in_stock > 0")
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}

	var products []models.Product
	err := query.
		Order("rating DESC, num_reviews DESC, id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Popular(ctx context.Context, exclude []uuid.UUID, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("count_in_stock > 0")
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}

	var products []models.Product
	err := query.
		Order("num_reviews DESC, rating DESC, id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Related(ctx context.Context, category string, excludeID uuid.UUID, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category = ? AND id <> ? AND count_in_stock > 0", category, excludeID).
		Order("rating DESC, num_reviews DESC, id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Trending ranks products by units sold across paid orders since the cutoff.
func (r *repository) Trending(ctx context.Context, since time.Time, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.*, SUM(order_items.quantity) AS units_sold").
		Joins("JOIN order_items ON order_items.product_id = products.id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.is_paid = ? AND orders.paid_at >= ?", true, since).
		Group("products.id").
		Order("units_sold DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
