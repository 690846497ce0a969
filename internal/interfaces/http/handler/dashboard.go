package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	reportapp "github.com/seafresh/backend/internal/application/report"
	"github.com/seafresh/backend/internal/domain/report"
)

// DashboardService builds the admin overview
type DashboardService interface {
	Dashboard(ctx context.Context, req reportapp.DashboardRequest) (*report.Dashboard, error)
}

// DashboardHandler serves the admin dashboard
type DashboardHandler struct {
	BaseHandler
	dashboard DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboard DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get godoc
// @ID           getDashboard
// @Summary      Admin dashboard
// @Description  Totals, orders by status, daily revenue, recent orders and low-stock products
// @Tags         admin-dashboard
// @Produce      json
// @Param        days query int false "Revenue window in days (default 30, max 365)"
// @Success      200 {object} APIResponse[report.Dashboard]
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	var req reportapp.DashboardRequest
	if !h.BindQuery(c, &req) {
		return
	}
	result, err := h.dashboard.Dashboard(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
