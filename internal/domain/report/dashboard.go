package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardTotals are the headline numbers on the admin dashboard
type DashboardTotals struct {
	Products          int64           `json:"products"`
	ActiveProducts    int64           `json:"active_products"`
	Users             int64           `json:"users"`
	Orders            int64           `json:"orders"`
	PendingOrders     int64           `json:"pending_orders"`
	UnreadMessages    int64           `json:"unread_messages"`
	Revenue           decimal.Decimal `json:"revenue"`
	RefundedAmount    decimal.Decimal `json:"refunded_amount"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// StatusCount is the number of orders in one status
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DailyRevenue is the paid revenue for one calendar day
type DailyRevenue struct {
	Date       time.Time       `json:"date"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// RecentOrder is a compact order row for the dashboard
type RecentOrder struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LowStockProduct is a product that needs restocking
type LowStockProduct struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Unit  string    `json:"unit"`
	Stock int       `json:"stock"`
}

// Dashboard is the admin overview read model
type Dashboard struct {
	Totals         DashboardTotals   `json:"totals"`
	OrdersByStatus []StatusCount     `json:"orders_by_status"`
	RevenueByDay   []DailyRevenue    `json:"revenue_by_day"`
	RecentOrders   []RecentOrder     `json:"recent_orders"`
	LowStock       []LowStockProduct `json:"low_stock"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// DashboardFilter bounds the dashboard queries
type DashboardFilter struct {
	Since             time.Time
	Until             time.Time
	RecentLimit       int
	LowStockThreshold int
	LowStockLimit     int
}

// DashboardRepository runs the read queries behind the dashboard
type DashboardRepository interface {
	Totals(ctx context.Context) (*DashboardTotals, error)
	OrdersByStatus(ctx context.Context) ([]StatusCount, error)
	RevenueByDay(ctx context.Context, since, until time.Time) ([]DailyRevenue, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
	LowStockProducts(ctx context.Context, threshold, limit int) ([]LowStockProduct, error)
}

// FillRevenueGaps returns one entry per day in [since, until], inserting zero
// rows for days with no paid orders. Input rows must be keyed by UTC date.
func FillRevenueGaps(rows []DailyRevenue, since, until time.Time) []DailyRevenue {
	byDay := make(map[string]DailyRevenue, len(rows))
	for _, r := range rows {
		byDay[r.Date.UTC().Format("2006-01-02")] = r
	}
	start := truncateDay(since)
	end := truncateDay(until)
	out := make([]DailyRevenue, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if r, ok := byDay[d.Format("2006-01-02")]; ok {
			r.Date = d
			out = append(out, r)
			continue
		}
		out = append(out, DailyRevenue{Date: d, Revenue: decimal.Zero})
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
