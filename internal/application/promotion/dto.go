package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/promotion"
	"github.com/shopspring/decimal"
)

// CreateCouponRequest represents a request to create a coupon
type CreateCouponRequest struct {
	Code           string           `json:"code" binding:"required,couponcode"`
	Description    string           `json:"description" binding:"max=500"`
	DiscountType   string           `json:"discount_type" binding:"required,oneof=percent flat"`
	DiscountValue  decimal.Decimal  `json:"discount_value" binding:"required"`
	MaxDiscount    *decimal.Decimal `json:"max_discount"`
	MinOrderAmount decimal.Decimal  `json:"min_order_amount"`
	MaxUses        int              `json:"max_uses" binding:"min=0"`
	ExpiresAt      *time.Time       `json:"expires_at"`
	IsActive       *bool            `json:"is_active"`
}

// UpdateCouponRequest represents a partial coupon update. The code is immutable.
type UpdateCouponRequest struct {
	Description    *string          `json:"description" binding:"omitempty,max=500"`
	DiscountType   *string          `json:"discount_type" binding:"omitempty,oneof=percent flat"`
	DiscountValue  *decimal.Decimal `json:"discount_value"`
	MaxDiscount    *decimal.Decimal `json:"max_discount"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	MaxUses        *int             `json:"max_uses" binding:"omitempty,min=0"`
	ExpiresAt      *time.Time       `json:"expires_at"`
	ClearExpiry    bool             `json:"clear_expiry"`
	IsActive       *bool            `json:"is_active"`
}

// ValidateCouponRequest checks a code against a cart subtotal
type ValidateCouponRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal" binding:"required"`
}

// CouponListFilter represents filter options for the admin coupon list
type CouponListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Expired  *bool  `form:"expired"`
	Source   string `form:"source" binding:"omitempty,oneof=admin spin"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CouponResponse represents a coupon in API responses
type CouponResponse struct {
	ID             uuid.UUID        `json:"id"`
	Code           string           `json:"code"`
	Description    string           `json:"description"`
	Label          string           `json:"label"`
	DiscountType   string           `json:"discount_type"`
	DiscountValue  decimal.Decimal  `json:"discount_value"`
	MaxDiscount    *decimal.Decimal `json:"max_discount,omitempty"`
	MinOrderAmount decimal.Decimal  `json:"min_order_amount"`
	MaxUses        int              `json:"max_uses"`
	UsedCount      int              `json:"used_count"`
	RemainingUses  int              `json:"remaining_uses"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	IsActive       bool             `json:"is_active"`
	IsExpired      bool             `json:"is_expired"`
	Source         string           `json:"source"`
	OwnerID        *uuid.UUID       `json:"owner_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// CouponValidationResponse is the discount a coupon gives on a cart
type CouponValidationResponse struct {
	Code        string          `json:"code"`
	Label       string          `json:"label"`
	Description string          `json:"description,omitempty"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SegmentResponse is one slice of the wheel as shown to customers
type SegmentResponse struct {
	Index         int             `json:"index"`
	Label         string          `json:"label"`
	DiscountType  string          `json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

// SpinStatusResponse tells the customer whether the wheel can be spun
type SpinStatusResponse struct {
	Eligible       bool              `json:"eligible"`
	Reason         string            `json:"reason"`
	NextEligibleAt *time.Time        `json:"next_eligible_at,omitempty"`
	LastSpinTime   *time.Time        `json:"last_spin_time,omitempty"`
	Segments       []SegmentResponse `json:"segments"`
}

// SpinResultResponse is the outcome of a spin
type SpinResultResponse struct {
	SegmentIndex int             `json:"segment_index"`
	Segment      SegmentResponse `json:"segment"`
	Won          bool            `json:"won"`
	Coupon       *CouponResponse `json:"coupon,omitempty"`
	SpunAt       time.Time       `json:"spun_at"`
}

// ToCouponResponse converts a domain Coupon to CouponResponse
func ToCouponResponse(c *promotion.Coupon) CouponResponse {
	return CouponResponse{
		ID:             c.ID,
		Code:           c.Code,
		Description:    c.Description,
		Label:          c.Label(),
		DiscountType:   string(c.DiscountType),
		DiscountValue:  c.DiscountValue,
		MaxDiscount:    c.MaxDiscount,
		MinOrderAmount: c.MinOrderAmount,
		MaxUses:        c.MaxUses,
		UsedCount:      c.UsedCount,
		RemainingUses:  c.RemainingUses(),
		ExpiresAt:      c.ExpiresAt,
		IsActive:       c.IsActive,
		IsExpired:      c.IsExpired(time.Now()),
		Source:         string(c.Source),
		OwnerID:        c.OwnerID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ToCouponResponses converts a slice of coupons
func ToCouponResponses(coupons []*promotion.Coupon) []CouponResponse {
	responses := make([]CouponResponse, len(coupons))
	for i, c := range coupons {
		responses[i] = ToCouponResponse(c)
	}
	return responses
}

func toSegmentResponse(i int, s promotion.Segment) SegmentResponse {
	return SegmentResponse{
		Index:         i,
		Label:         s.Label,
		DiscountType:  string(s.DiscountType),
		DiscountValue: s.DiscountValue,
	}
}
