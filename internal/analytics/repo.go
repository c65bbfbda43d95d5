package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mangohub/mangostore-backend/pkg/db/models"
)

const lowStockThreshold = 5

// Repository covers the aggregate queries behind the admin reports.
type Repository interface {
	SumPaidSales(ctx context.Context) (string, error)
	CountOrders(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	CountOutOfStock(ctx context.Context) (int64, error)
	ReviewStats(ctx context.Context) (count int64, avgRating string, err error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	RecentUsers(ctx context.Context, limit int) ([]models.User, error)
	PaidOrdersBetween(ctx context.Context, start, end time.Time) ([]paidOrderRow, error)
	ProductPerformance(ctx context.Context, limit int) ([]ProductPerformanceRow, error)
	CustomerInsights(ctx context.Context, limit int) ([]CustomerInsightRow, error)
	InventoryStatus(ctx context.Context) ([]InventoryStatusRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SumPaidSales(ctx context.Context) (string, error) {
	var total *string
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("is_paid = ?", true).
		Select("SUM(total_price)").
		Scan(&total).Error
	if err != nil {
		return "", err
	}
	if total == nil {
		return "0", nil
	}
	return *total, nil
}

func (r *repository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

func (r *repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

func (r *repository) CountLowStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("count_in_stock > 0 AND count_in_stock < ?", lowStockThreshold).
		Count(&count).Error
	return count, err
}

func (r *repository) CountOutOfStock(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("count_in_stock = 0").
		Count(&count).Error
	return count, err
}

func (r *repository) ReviewStats(ctx context.Context) (int64, string, error) {
	var row struct {
		Count int64
		Avg   *string
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COUNT(*) AS count, ROUND(AVG(rating), 2) AS avg").
		Scan(&row).Error
	if err != nil {
		return 0, "", err
	}
	if row.Avg == nil {
		return row.Count, "0", nil
	}
	return row.Count, *row.Avg, nil
}

func (r *repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) RecentUsers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) PaidOrdersBetween(ctx context.Context, start, end time.Time) ([]paidOrderRow, error) {
	var rows []paidOrderRow
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("paid_at, total_price").
		Where("is_paid = ? AND paid_at >= ? AND paid_at <= ?", true, start, end).
		Order("paid_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ProductPerformance(ctx context.Context, limit int) ([]ProductPerformanceRow, error) {
	var rows []ProductPerformanceRow
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select(`order_items.product_id,
			MAX(order_items.name) AS name,
			SUM(order_items.quantity) AS units_sold,
			SUM(order_items.unit_price * order_items.quantity) AS revenue`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.is_paid = ?", true).
		Group("order_items.product_id").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CustomerInsights(ctx context.Context, limit int) ([]CustomerInsightRow, error) {
	// MAX(created_at) loses the column's time type on some drivers, so the
	// timestamp comes back as text and is parsed here.
	var raw []struct {
		UserID     uuid.UUID
		Name       string
		Email      string
		OrderCount int64
		TotalSpent decimal.Decimal
		LastOrder  string
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(`orders.user_id,
			MAX(users.name) AS name,
			MAX(users.email) AS email,
			COUNT(*) AS order_count,
			SUM(orders.total_price) AS total_spent,
			MAX(orders.created_at) AS last_order`).
		Joins("JOIN users ON users.id = orders.user_id").
		Where("orders.is_paid = ?", true).
		Group("orders.user_id").
		Order("total_spent DESC").
		Limit(limit).
		Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	rows := make([]CustomerInsightRow, 0, len(raw))
	for _, entry := range raw {
		placed, err := parseAggregateTime(entry.LastOrder)
		if err != nil {
			return nil, err
		}
		rows = append(rows, CustomerInsightRow{
			UserID:          entry.UserID,
			Name:            entry.Name,
			Email:           entry.Email,
			OrderCount:      entry.OrderCount,
			TotalSpent:      entry.TotalSpent,
			LastOrderPlaced: placed,
		})
	}
	return rows, nil
}

// parseAggregateTime reads a timestamp rendered as text by an aggregate
// expression. Layouts cover postgres and sqlite representations.
func parseAggregateTime(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05",
	}
	var lastErr error
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse aggregate timestamp %q: %w", value, lastErr)
}

func (r *repository) InventoryStatus(ctx context.Context) ([]InventoryStatusRow, error) {
	var rows []InventoryStatusRow
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select(`category,
			COUNT(*) AS products,
			SUM(count_in_stock) AS total_stock,
			SUM(price * count_in_stock) AS stock_value`).
		Group("category").
		Order("stock_value DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
