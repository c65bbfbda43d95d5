package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mangohub/mangostore-backend/pkg/db/models"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
)

type stubAnalyticsRepo struct {
	paidSales   string
	orders      int64
	users       int64
	products    int64
	lowStock    int64
	outOfStock  int64
	reviewCount int64
	avgRating   string
	recentOrds  []models.Order
	recentUsrs  []models.User
	paidRows    []paidOrderRow
	performance []ProductPerformanceRow
	insights    []CustomerInsightRow
	inventory   []InventoryStatusRow

	rangeStart time.Time
	rangeEnd   time.Time
}

func (s *stubAnalyticsRepo) SumPaidSales(context.Context) (string, error) {
	if s.paidSales == "" {
		return "0", nil
	}
	return s.paidSales, nil
}

func (s *stubAnalyticsRepo) CountOrders(context.Context) (int64, error)     { return s.orders, nil }
func (s *stubAnalyticsRepo) CountUsers(context.Context) (int64, error)      { return s.users, nil }
func (s *stubAnalyticsRepo) CountProducts(context.Context) (int64, error)   { return s.products, nil }
func (s *stubAnalyticsRepo) CountLowStock(context.Context) (int64, error)   { return s.lowStock, nil }
func (s *stubAnalyticsRepo) CountOutOfStock(context.Context) (int64, error) { return s.outOfStock, nil }

func (s *stubAnalyticsRepo) ReviewStats(context.Context) (int64, string, error) {
	if s.avgRating == "" {
		return s.reviewCount, "0", nil
	}
	return s.reviewCount, s.avgRating, nil
}

func (s *stubAnalyticsRepo) RecentOrders(context.Context, int) ([]models.Order, error) {
	return s.recentOrds, nil
}

func (s *stubAnalyticsRepo) RecentUsers(context.Context, int) ([]models.User, error) {
	return s.recentUsrs, nil
}

func (s *stubAnalyticsRepo) PaidOrdersBetween(_ context.Context, start, end time.Time) ([]paidOrderRow, error) {
	s.rangeStart = start
	s.rangeEnd = end
	return s.paidRows, nil
}

func (s *stubAnalyticsRepo) ProductPerformance(context.Context, int) ([]ProductPerformanceRow, error) {
	return s.performance, nil
}

func (s *stubAnalyticsRepo) CustomerInsights(context.Context, int) ([]CustomerInsightRow, error) {
	return s.insights, nil
}

func (s *stubAnalyticsRepo) InventoryStatus(context.Context) ([]InventoryStatusRow, error) {
	return s.inventory, nil
}

func newAnalyticsService(t *testing.T, repo Repository) *service {
	t.Helper()

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc.(*service)
}

func paidRow(day string, total string) paidOrderRow {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return paidOrderRow{PaidAt: t.Add(9 * time.Hour), TotalPrice: decimal.RequireFromString(total)}
}

func TestSalesReportBucketsDaily(t *testing.T) {
	t.Parallel()

	repo := &stubAnalyticsRepo{paidRows: []paidOrderRow{
		paidRow("2026-08-24", "20.00"),
		paidRow("2026-08-24", "10.50"),
		paidRow("2026-08-26", "5.00"),
	}}
	svc := newAnalyticsService(t, repo)

	report, err := svc.SalesReport(context.Background(), DateRange{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}, GranularityDaily)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	if len(report) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(report))
	}
	if report[0].Period != "2026-08-24" || report[0].Orders != 2 {
		t.Fatalf("unexpected first bucket: %+v", report[0])
	}
	if !report[0].Revenue.Equal(decimal.RequireFromString("30.50")) {
		t.Fatalf("first bucket revenue = %s", report[0].Revenue)
	}
	if report[1].Period != "2026-08-26" || report[1].Orders != 1 {
		t.Fatalf("unexpected second bucket: %+v", report[1])
	}
}

func TestSalesReportBucketsWeekly(t *testing.T) {
	t.Parallel()

	// Monday 2026-08-24 through Sunday 2026-08-30 share one bucket.
	repo := &stubAnalyticsRepo{paidRows: []paidOrderRow{
		paidRow("2026-08-24", "10.00"),
		paidRow("2026-08-26", "10.00"),
		paidRow("2026-08-30", "10.00"),
		paidRow("2026-08-31", "10.00"),
	}}
	svc := newAnalyticsService(t, repo)

	report, err := svc.SalesReport(context.Background(), DateRange{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	}, GranularityWeekly)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	if len(report) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(report))
	}
	if report[0].Period != "2026-08-24" || report[0].Orders != 3 {
		t.Fatalf("unexpected first bucket: %+v", report[0])
	}
	if report[1].Period != "2026-08-31" || report[1].Orders != 1 {
		t.Fatalf("unexpected second bucket: %+v", report[1])
	}
}

func TestSalesReportBucketsMonthly(t *testing.T) {
	t.Parallel()

	repo := &stubAnalyticsRepo{paidRows: []paidOrderRow{
		paidRow("2026-07-30", "10.00"),
		paidRow("2026-08-02", "10.00"),
		paidRow("2026-08-20", "10.00"),
	}}
	svc := newAnalyticsService(t, repo)

	report, err := svc.SalesReport(context.Background(), DateRange{
		Start: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}, GranularityMonthly)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	if len(report) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(report))
	}
	if report[0].Period != "2026-07" || report[1].Period != "2026-08" {
		t.Fatalf("unexpected periods: %+v", report)
	}
	if report[1].Orders != 2 {
		t.Fatalf("august bucket orders = %d", report[1].Orders)
	}
}

func TestSalesReportRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	svc := newAnalyticsService(t, &stubAnalyticsRepo{})

	_, err := svc.SalesReport(context.Background(), DateRange{
		Start: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}, GranularityDaily)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSalesReportDefaultsToLastThirtyDays(t *testing.T) {
	t.Parallel()

	repo := &stubAnalyticsRepo{}
	svc := newAnalyticsService(t, repo)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.SalesReport(context.Background(), DateRange{}, GranularityDaily); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !repo.rangeEnd.Equal(now) {
		t.Fatalf("range end = %s, want %s", repo.rangeEnd, now)
	}
	if !repo.rangeStart.Equal(now.AddDate(0, 0, -30)) {
		t.Fatalf("range start = %s", repo.rangeStart)
	}
}

func TestCustomerInsightsComputesAverageOrder(t *testing.T) {
	t.Parallel()

	repo := &stubAnalyticsRepo{insights: []CustomerInsightRow{
		{UserID: uuid.New(), OrderCount: 3, TotalSpent: decimal.RequireFromString("100.00")},
		{UserID: uuid.New(), OrderCount: 0, TotalSpent: decimal.Zero},
	}}
	svc := newAnalyticsService(t, repo)

	rows, err := svc.CustomerInsights(context.Background(), 10)
	if err != nil {
		t.Fatalf("insights failed: %v", err)
	}
	if !rows[0].AverageOrder.Equal(decimal.RequireFromString("33.33")) {
		t.Fatalf("average order = %s", rows[0].AverageOrder)
	}
	if !rows[1].AverageOrder.IsZero() {
		t.Fatalf("zero orders must keep a zero average, got %s", rows[1].AverageOrder)
	}
}

func TestDashboardAssemblesStats(t *testing.T) {
	t.Parallel()

	repo := &stubAnalyticsRepo{
		paidSales:   "1234.56",
		orders:      42,
		users:       10,
		products:    7,
		lowStock:    2,
		outOfStock:  1,
		reviewCount: 12,
		avgRating:   "4.25",
		recentUsrs:  []models.User{{ID: uuid.New(), Name: "Amna", PasswordHash: "secret"}},
	}
	svc := newAnalyticsService(t, repo)

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}

	if !stats.TotalSales.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("total sales = %s", stats.TotalSales)
	}
	if stats.TotalOrders != 42 || stats.TotalUsers != 10 || stats.TotalProducts != 7 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.LowStock != 2 || stats.OutOfStock != 1 {
		t.Fatalf("unexpected stock counts: %+v", stats)
	}
	if !stats.AverageRating.Equal(decimal.RequireFromString("4.25")) {
		t.Fatalf("average rating = %s", stats.AverageRating)
	}
	if stats.RecentUsers[0].PasswordHash != "" {
		t.Fatalf("password hash must not leave the service")
	}
}
