package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	promotionapp "github.com/seafresh/backend/internal/application/promotion"
)

// SpinService is the spin wheel
type SpinService interface {
	Status(ctx context.Context, userID uuid.UUID) (*promotionapp.SpinStatusResponse, error)
	Spin(ctx context.Context, userID uuid.UUID) (*promotionapp.SpinResultResponse, error)
}

// SpinHandler handles the spin wheel
type SpinHandler struct {
	BaseHandler
	spins SpinService
}

// NewSpinHandler creates a new SpinHandler
func NewSpinHandler(spins SpinService) *SpinHandler {
	return &SpinHandler{spins: spins}
}

// Status godoc
// @ID           getSpinStatus
// @Summary      Whether I can spin the wheel
// @Tags         spin
// @Produce      json
// @Success      200 {object} APIResponse[promotion.SpinStatusResponse]
// @Router       /spin [get]
func (h *SpinHandler) Status(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	status, err := h.spins.Status(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Spin godoc
// @ID           spinWheel
// @Summary      Spin the wheel
// @Description  A win issues a personal single-use coupon
// @Tags         spin
// @Produce      json
// @Success      200 {object} APIResponse[promotion.SpinResultResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /spin [post]
func (h *SpinHandler) Spin(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	result, err := h.spins.Spin(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
