package report

import (
	"context"
	"time"

	"github.com/seafresh/backend/internal/domain/report"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultDashboardDays = 30
	maxDashboardDays     = 365
	recentOrdersLimit    = 10
	lowStockLimit        = 10
)

// DashboardRequest holds the query parameters of the dashboard
type DashboardRequest struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

// DashboardService builds the admin overview
type DashboardService struct {
	repo              report.DashboardRepository
	lowStockThreshold int
	logger            *zap.Logger
	now               func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repo report.DashboardRepository, lowStockThreshold int, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		repo:              repo,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
		now:               time.Now,
	}
}

// Dashboard runs the dashboard queries concurrently and assembles the result
func (s *DashboardService) Dashboard(ctx context.Context, req DashboardRequest) (*report.Dashboard, error) {
	filter := s.filterFor(req.Days)
	result := &report.Dashboard{GeneratedAt: filter.Until}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.repo.Totals(gctx)
		if err != nil {
			return err
		}
		result.Totals = *totals
		return nil
	})
	g.Go(func() error {
		counts, err := s.repo.OrdersByStatus(gctx)
		result.OrdersByStatus = counts
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.RevenueByDay(gctx, filter.Since, filter.Until)
		if err != nil {
			return err
		}
		result.RevenueByDay = report.FillRevenueGaps(rows, filter.Since, filter.Until)
		return nil
	})
	g.Go(func() error {
		recent, err := s.repo.RecentOrders(gctx, filter.RecentLimit)
		result.RecentOrders = recent
		return err
	})
	g.Go(func() error {
		low, err := s.repo.LowStockProducts(gctx, filter.LowStockThreshold, filter.LowStockLimit)
		result.LowStock = low
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build dashboard", zap.Error(err))
		return nil, err
	}

	if result.OrdersByStatus == nil {
		result.OrdersByStatus = []report.StatusCount{}
	}
	if result.RecentOrders == nil {
		result.RecentOrders = []report.RecentOrder{}
	}
	if result.LowStock == nil {
		result.LowStock = []report.LowStockProduct{}
	}
	return result, nil
}

func (s *DashboardService) filterFor(days int) report.DashboardFilter {
	if days <= 0 {
		days = defaultDashboardDays
	}
	if days > maxDashboardDays {
		days = maxDashboardDays
	}
	until := s.now().UTC()
	return report.DashboardFilter{
		Since:             until.AddDate(0, 0, -(days - 1)),
		Until:             until,
		RecentLimit:       recentOrdersLimit,
		LowStockThreshold: s.lowStockThreshold,
		LowStockLimit:     lowStockLimit,
	}
}
