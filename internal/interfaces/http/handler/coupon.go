package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	promotionapp "github.com/seafresh/backend/internal/application/promotion"
)

// CouponService is the coupon side of the promotion application
type CouponService interface {
	Validate(ctx context.Context, userID uuid.UUID, req promotionapp.ValidateCouponRequest) (*promotionapp.CouponValidationResponse, error)
	Create(ctx context.Context, req promotionapp.CreateCouponRequest) (*promotionapp.CouponResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*promotionapp.CouponResponse, error)
	Update(ctx context.Context, id uuid.UUID, req promotionapp.UpdateCouponRequest) (*promotionapp.CouponResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter promotionapp.CouponListFilter) ([]promotionapp.CouponResponse, int64, error)
	Mine(ctx context.Context, userID uuid.UUID) ([]promotionapp.CouponResponse, error)
}

// CouponHandler handles coupon validation and administration
type CouponHandler struct {
	BaseHandler
	coupons CouponService
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(coupons CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// Validate godoc
// @ID           validateCoupon
// @Summary      Check a coupon against a cart subtotal
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Param        request body promotion.ValidateCouponRequest true "Code and subtotal"
// @Success      200 {object} APIResponse[promotion.CouponValidationResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /coupons/validate [post]
func (h *CouponHandler) Validate(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req promotionapp.ValidateCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.coupons.Validate(c.Request.Context(), session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Mine godoc
// @ID           listMyCoupons
// @Summary      My unused personal coupons
// @Tags         coupons
// @Produce      json
// @Success      200 {object} APIResponse[[]promotion.CouponResponse]
// @Router       /coupons/mine [get]
func (h *CouponHandler) Mine(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	coupons, err := h.coupons.Mine(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupons)
}

// List godoc
// @ID           listCoupons
// @Summary      List coupons
// @Tags         admin-coupons
// @Produce      json
// @Param        search  query string false "Code search"
// @Param        active  query bool   false "Active flag"
// @Param        expired query bool   false "Expired flag"
// @Param        source  query string false "admin or spin"
// @Success      200 {object} APIResponse[[]promotion.CouponResponse]
// @Router       /admin/coupons [get]
func (h *CouponHandler) List(c *gin.Context) {
	var filter promotionapp.CouponListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	coupons, total, err := h.coupons.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, coupons, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getCoupon
// @Summary      Get a coupon
// @Tags         admin-coupons
// @Produce      json
// @Param        id path string true "Coupon ID"
// @Success      200 {object} APIResponse[promotion.CouponResponse]
// @Router       /admin/coupons/{id} [get]
func (h *CouponHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	coupon, err := h.coupons.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupon)
}

// Create godoc
// @ID           createCoupon
// @Summary      Create a coupon
// @Tags         admin-coupons
// @Accept       json
// @Produce      json
// @Param        request body promotion.CreateCouponRequest true "Coupon"
// @Success      201 {object} APIResponse[promotion.CouponResponse]
// @Failure      409 {object} ErrorResponse
// @Router       /admin/coupons [post]
func (h *CouponHandler) Create(c *gin.Context) {
	var req promotionapp.CreateCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}
	coupon, err := h.coupons.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, coupon)
}

// Update godoc
// @ID           updateCoupon
// @Summary      Update a coupon
// @Tags         admin-coupons
// @Accept       json
// @Produce      json
// @Param        id path string true "Coupon ID"
// @Param        request body promotion.UpdateCouponRequest true "Changes"
// @Success      200 {object} APIResponse[promotion.CouponResponse]
// @Router       /admin/coupons/{id} [put]
func (h *CouponHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req promotionapp.UpdateCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}
	coupon, err := h.coupons.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, coupon)
}

// Delete godoc
// @ID           deleteCoupon
// @Summary      Delete a coupon
// @Tags         admin-coupons
// @Param        id path string true "Coupon ID"
// @Success      204
// @Router       /admin/coupons/{id} [delete]
func (h *CouponHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.coupons.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
