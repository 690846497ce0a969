package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/seafresh/backend/internal/domain/contact"
	"github.com/seafresh/backend/internal/domain/report"
	"github.com/seafresh/backend/internal/domain/trade"
	"github.com/seafresh/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// revenueStatuses are the payment states in which money was captured
var revenueStatuses = []trade.PaymentStatus{
	trade.PaymentStatusPaid,
	trade.PaymentStatusRefundPending,
	trade.PaymentStatusRefunded,
}

// GormDashboardRepository implements report.DashboardRepository with
// aggregate SQL over the order, product, user and contact tables
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// Totals computes the headline counters
func (r *GormDashboardRepository) Totals(ctx context.Context) (*report.DashboardTotals, error) {
	db := r.db.WithContext(ctx)
	totals := &report.DashboardTotals{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&totals.Products, db.Model(&models.ProductModel{})},
		{&totals.ActiveProducts, db.Model(&models.ProductModel{}).Where("is_available = ?", true)},
		{&totals.Users, db.Model(&models.UserModel{})},
		{&totals.Orders, db.Model(&models.OrderModel{})},
		{&totals.PendingOrders, db.Model(&models.OrderModel{}).Where("status = ?", trade.OrderStatusPending)},
		{&totals.UnreadMessages, db.Model(&models.ContactMessageModel{}).Where("status = ?", contact.StatusNew)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("dashboard totals: %w", err)
		}
	}

	var money struct {
		PaidOrders int64
		Gross      decimal.Decimal
		Refunded   decimal.Decimal
	}
	if err := db.Model(&models.OrderModel{}).
		Select("COUNT(*) AS paid_orders, "+
			"COALESCE(SUM(total), 0) AS gross, "+
			"COALESCE(SUM(CASE WHEN payment_status = ? THEN refund_amount ELSE 0 END), 0) AS refunded",
			trade.PaymentStatusRefunded).
		Where("payment_status IN ?", revenueStatuses).
		Scan(&money).Error; err != nil {
		return nil, fmt.Errorf("dashboard revenue: %w", err)
	}

	totals.Revenue = money.Gross.Sub(money.Refunded).Round(2)
	totals.RefundedAmount = money.Refunded.Round(2)
	totals.AverageOrderValue = decimal.Zero
	if money.PaidOrders > 0 {
		totals.AverageOrderValue = money.Gross.Div(decimal.NewFromInt(money.PaidOrders)).Round(2)
	}
	return totals, nil
}

// OrdersByStatus counts orders per status
func (r *GormDashboardRepository) OrdersByStatus(ctx context.Context) ([]report.StatusCount, error) {
	var rows []report.StatusCount
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

// RevenueByDay sums net paid revenue per UTC calendar day in [since, until]
func (r *GormDashboardRepository) RevenueByDay(ctx context.Context, since, until time.Time) ([]report.DailyRevenue, error) {
	start := utcDay(since)
	end := utcDay(until).AddDate(0, 0, 1)
	dayExpr := r.dayExpr("paid_at")

	var rows []struct {
		Day        string
		OrderCount int64
		Revenue    decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select(dayExpr+" AS day, COUNT(*) AS order_count, "+
			"COALESCE(SUM(total - CASE WHEN payment_status = ? THEN refund_amount ELSE 0 END), 0) AS revenue",
			trade.PaymentStatusRefunded).
		Where("payment_status IN ? AND paid_at >= ? AND paid_at < ?", revenueStatuses, start, end).
		Group(dayExpr).
		Order(dayExpr).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("revenue by day: %w", err)
	}

	out := make([]report.DailyRevenue, 0, len(rows))
	for _, row := range rows {
		day, err := time.Parse("2006-01-02", row.Day)
		if err != nil {
			return nil, fmt.Errorf("revenue by day: parse %q: %w", row.Day, err)
		}
		out = append(out, report.DailyRevenue{Date: day, OrderCount: row.OrderCount, Revenue: row.Revenue.Round(2)})
	}
	return out, nil
}

// dayExpr formats a timestamp column as YYYY-MM-DD in UTC for the active dialect
func (r *GormDashboardRepository) dayExpr(column string) string {
	if r.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m-%d', " + column + ")"
	}
	return "to_char(" + column + " AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
}

// RecentOrders returns the newest orders with the customer name
func (r *GormDashboardRepository) RecentOrders(ctx context.Context, limit int) ([]report.RecentOrder, error) {
	var rows []report.RecentOrder
	err := r.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.id, o.order_number, COALESCE(u.name, '') AS customer_name, o.total, o.status, o.payment_status, o.created_at").
		Joins("LEFT JOIN users u ON u.id = o.user_id").
		Order("o.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// LowStockProducts returns available products at or below threshold
func (r *GormDashboardRepository) LowStockProducts(ctx context.Context, threshold, limit int) ([]report.LowStockProduct, error) {
	var rows []report.LowStockProduct
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Select("id, name, unit, stock").
		Where("is_available = ? AND stock <= ?", true, threshold).
		Order("stock ASC, name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
