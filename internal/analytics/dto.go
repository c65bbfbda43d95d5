package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mangohub/mangostore-backend/pkg/db/models"
)

// Granularity selects the bucket size for the sales report.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// ParseGranularity converts raw input into a Granularity. Blank input
// defaults to daily.
func ParseGranularity(value string) (Granularity, error) {
	switch Granularity(value) {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return Granularity(value), nil
	case "":
		return GranularityDaily, nil
	}
	return "", fmt.Errorf("invalid granularity %q", value)
}

// DateRange bounds a report. End is inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalOrders   int64           `json:"total_orders"`
	TotalUsers    int64           `json:"total_users"`
	TotalProducts int64           `json:"total_products"`
	LowStock      int64           `json:"low_stock"`
	OutOfStock    int64           `json:"out_of_stock"`
	ReviewCount   int64           `json:"review_count"`
	AverageRating decimal.Decimal `json:"average_rating"`
	RecentOrders  []models.Order  `json:"recent_orders"`
	RecentUsers   []models.User   `json:"recent_users"`
}

// SalesReportRow is one time bucket of paid sales.
type SalesReportRow struct {
	Period  string          `json:"period"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductPerformanceRow aggregates paid sales per product.
type ProductPerformanceRow struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// CustomerInsightRow summarizes one customer's paid order history.
type CustomerInsightRow struct {
	UserID          uuid.UUID       `json:"user_id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	OrderCount      int64           `json:"order_count"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	AverageOrder    decimal.Decimal `json:"average_order"`
	LastOrderPlaced time.Time       `json:"last_order_placed"`
}

// InventoryStatusRow aggregates stock per product category.
type InventoryStatusRow struct {
	Category   string          `json:"category"`
	Products   int64           `json:"products"`
	TotalStock int64           `json:"total_stock"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// paidOrderRow is the raw material for the sales report; bucketing happens
// in the service so the SQL stays dialect-neutral.
type paidOrderRow struct {
	PaidAt     time.Time
	TotalPrice decimal.Decimal
}
