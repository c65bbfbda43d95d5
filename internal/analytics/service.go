package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
)

const (
	recentLimit      = 5
	defaultRangeDays = 30
	defaultRowLimit  = 20
	maxRowLimit      = 100
)

type clock func() time.Time

// Service produces the admin reports. Authorization is enforced at the
// router; every operation here assumes an admin caller.
type Service interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	SalesReport(ctx context.Context, rng DateRange, granularity Granularity) ([]SalesReportRow, error)
	ProductPerformance(ctx context.Context, limit int) ([]ProductPerformanceRow, error)
	CustomerInsights(ctx context.Context, limit int) ([]CustomerInsightRow, error)
	InventoryStatus(ctx context.Context) ([]InventoryStatusRow, error)
}

type service struct {
	repo Repository
	now  clock
}

// NewService builds an analytics service over the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Dashboard assembles the landing-page summary.
func (s *service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	totalSales, err := s.repo.SumPaidSales(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum paid sales")
	}
	stats.TotalSales, err = decimal.NewFromString(totalSales)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse sales total")
	}

	if stats.TotalOrders, err = s.repo.CountOrders(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	if stats.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	if stats.TotalProducts, err = s.repo.CountProducts(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	if stats.LowStock, err = s.repo.CountLowStock(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count low stock")
	}
	if stats.OutOfStock, err = s.repo.CountOutOfStock(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count out of stock")
	}

	count, avg, err := s.repo.ReviewStats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "review stats")
	}
	stats.ReviewCount = count
	stats.AverageRating, err = decimal.NewFromString(avg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse average rating")
	}

	if stats.RecentOrders, err = s.repo.RecentOrders(ctx, recentLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent orders")
	}
	if stats.RecentUsers, err = s.repo.RecentUsers(ctx, recentLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent users")
	}
	for i := range stats.RecentUsers {
		stats.RecentUsers[i].PasswordHash = ""
	}

	return stats, nil
}

// SalesReport buckets paid orders by period. A zero range defaults to the
// last thirty days.
func (s *service) SalesReport(ctx context.Context, rng DateRange, granularity Granularity) ([]SalesReportRow, error) {
	if !granularityValid(granularity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid granularity %q", granularity))
	}
	if rng.Start.IsZero() && rng.End.IsZero() {
		rng.End = s.now()
		rng.Start = rng.End.AddDate(0, 0, -defaultRangeDays)
	}
	if rng.End.Before(rng.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range end precedes start")
	}

	rows, err := s.repo.PaidOrdersBetween(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load paid orders")
	}

	report := make([]SalesReportRow, 0)
	index := map[string]int{}
	for _, row := range rows {
		key := bucketKey(row.PaidAt, granularity)
		i, ok := index[key]
		if !ok {
			i = len(report)
			index[key] = i
			report = append(report, SalesReportRow{Period: key, Revenue: decimal.Zero})
		}
		report[i].Orders++
		report[i].Revenue = report[i].Revenue.Add(row.TotalPrice)
	}
	return report, nil
}

// ProductPerformance ranks products by paid revenue.
func (s *service) ProductPerformance(ctx context.Context, limit int) ([]ProductPerformanceRow, error) {
	rows, err := s.repo.ProductPerformance(ctx, normalizeRowLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "product performance")
	}
	return rows, nil
}

// CustomerInsights ranks customers by paid spend and fills in the average
// order value.
func (s *service) CustomerInsights(ctx context.Context, limit int) ([]CustomerInsightRow, error) {
	rows, err := s.repo.CustomerInsights(ctx, normalizeRowLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "customer insights")
	}
	for i := range rows {
		if rows[i].OrderCount > 0 {
			rows[i].AverageOrder = rows[i].TotalSpent.
				Div(decimal.NewFromInt(rows[i].OrderCount)).
				Round(2)
		}
	}
	return rows, nil
}

// InventoryStatus reports stock counts and value per category.
func (s *service) InventoryStatus(ctx context.Context) ([]InventoryStatusRow, error) {
	rows, err := s.repo.InventoryStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inventory status")
	}
	return rows, nil
}

func granularityValid(g Granularity) bool {
	switch g {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

// bucketKey formats the period label for a paid order. Weekly buckets are
// keyed by the Monday that starts the week.
func bucketKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityWeekly:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return t.AddDate(0, 0, 1-weekday).Format("2006-01-02")
	case GranularityMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

func normalizeRowLimit(limit int) int {
	if limit <= 0 {
		return defaultRowLimit
	}
	if limit > maxRowLimit {
		return maxRowLimit
	}
	return limit
}
