package promotion

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DiscountType defines how a coupon discount is computed
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFlat    DiscountType = "flat"
)

// IsValid checks if the discount type is valid
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercent || t == DiscountTypeFlat
}

// CouponSource records who issued the coupon
type CouponSource string

const (
	CouponSourceAdmin CouponSource = "admin"
	CouponSourceSpin  CouponSource = "spin"
)

// Coupon validation errors
var (
	ErrCouponNotFound  = shared.NewDomainError("COUPON_NOT_FOUND", "Coupon code is not valid")
	ErrCouponInactive  = shared.NewDomainError("COUPON_INACTIVE", "Coupon is no longer active")
	ErrCouponExpired   = shared.NewDomainError("COUPON_EXPIRED", "Coupon has expired")
	ErrCouponExhausted = shared.NewDomainError("COUPON_EXHAUSTED", "Coupon usage limit has been reached")
)

var couponCodePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

// Coupon is a discount code redeemable at checkout
type Coupon struct {
	shared.BaseAggregateRoot
	Code           string
	Description    string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	MaxDiscount    *decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxUses        int
	UsedCount      int
	ExpiresAt      *time.Time
	IsActive       bool
	OwnerID        *uuid.UUID
	Source         CouponSource
}

// NormalizeCode upper-cases and trims a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewCoupon creates a new active coupon issued by an admin
func NewCoupon(code string, discountType DiscountType, value decimal.Decimal) (*Coupon, error) {
	code = NormalizeCode(code)
	if !couponCodePattern.MatchString(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Coupon code must be 3-32 characters of A-Z, 0-9, _ or -")
	}

	c := &Coupon{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		MinOrderAmount:    decimal.Zero,
		IsActive:          true,
		Source:            CouponSourceAdmin,
	}
	if err := c.applyDiscount(discountType, value, nil); err != nil {
		return nil, err
	}

	c.AddDomainEvent(NewCouponCreatedEvent(c))

	return c, nil
}

// SetDiscount sets the discount rule. maxDiscount only applies to percent coupons.
func (c *Coupon) SetDiscount(discountType DiscountType, value decimal.Decimal, maxDiscount *decimal.Decimal) error {
	if err := c.applyDiscount(discountType, value, maxDiscount); err != nil {
		return err
	}
	c.Touch()
	return nil
}

func (c *Coupon) applyDiscount(discountType DiscountType, value decimal.Decimal, maxDiscount *decimal.Decimal) error {
	if !discountType.IsValid() {
		return shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Discount type must be percent or flat")
	}
	if !value.IsPositive() {
		return shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Discount value must be positive")
	}
	if discountType == DiscountTypePercent && value.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Percent discount cannot exceed 100")
	}
	if maxDiscount != nil && !maxDiscount.IsPositive() {
		return shared.NewDomainError("INVALID_MAX_DISCOUNT", "Maximum discount must be positive")
	}
	if discountType == DiscountTypeFlat {
		maxDiscount = nil
	}

	c.DiscountType = discountType
	c.DiscountValue = value
	c.MaxDiscount = maxDiscount
	return nil
}

// SetLimits sets the minimum order amount, usage limit and expiry.
// maxUses of 0 means unlimited.
func (c *Coupon) SetLimits(minOrder decimal.Decimal, maxUses int, expiresAt *time.Time) error {
	if minOrder.IsNegative() {
		return shared.NewDomainError("INVALID_MIN_ORDER", "Minimum order amount cannot be negative")
	}
	if maxUses < 0 {
		return shared.NewDomainError("INVALID_MAX_USES", "Maximum uses cannot be negative")
	}
	if maxUses > 0 && maxUses < c.UsedCount {
		return shared.NewDomainError("INVALID_MAX_USES", fmt.Sprintf("Coupon has already been used %d times", c.UsedCount))
	}
	c.MinOrderAmount = minOrder
	c.MaxUses = maxUses
	c.ExpiresAt = expiresAt
	c.Touch()
	return nil
}

// SetDescription sets the text shown to customers
func (c *Coupon) SetDescription(description string) {
	c.Description = strings.TrimSpace(description)
	c.Touch()
}

// Activate enables the coupon
func (c *Coupon) Activate() {
	if c.IsActive {
		return
	}
	c.IsActive = true
	c.Touch()
}

// Deactivate disables the coupon
func (c *Coupon) Deactivate() {
	if !c.IsActive {
		return
	}
	c.IsActive = false
	c.Touch()
}

// IsExpired returns true if the coupon has an expiry in the past
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// IsExhausted returns true if the usage limit has been reached
func (c *Coupon) IsExhausted() bool {
	return c.MaxUses > 0 && c.UsedCount >= c.MaxUses
}

// RemainingUses returns the uses left, or -1 when unlimited
func (c *Coupon) RemainingUses() int {
	if c.MaxUses == 0 {
		return -1
	}
	if c.UsedCount >= c.MaxUses {
		return 0
	}
	return c.MaxUses - c.UsedCount
}

// IsPersonal returns true if only one user may redeem the coupon
func (c *Coupon) IsPersonal() bool {
	return c.OwnerID != nil
}

// Validate checks that userID may apply the coupon to subtotal and returns the discount
func (c *Coupon) Validate(subtotal decimal.Decimal, userID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	if c.OwnerID != nil && *c.OwnerID != userID {
		return decimal.Zero, ErrCouponNotFound
	}
	if !c.IsActive {
		return decimal.Zero, ErrCouponInactive
	}
	if c.IsExpired(now) {
		return decimal.Zero, ErrCouponExpired
	}
	if c.IsExhausted() {
		return decimal.Zero, ErrCouponExhausted
	}
	if subtotal.LessThan(c.MinOrderAmount) {
		return decimal.Zero, shared.NewDomainError("COUPON_MIN_ORDER",
			fmt.Sprintf("Add items worth ₹%s more to use this coupon", c.MinOrderAmount.Sub(subtotal).StringFixed(2)))
	}
	return c.DiscountFor(subtotal), nil
}

// DiscountFor computes the discount on subtotal without checking eligibility
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountTypePercent:
		discount = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
		if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
			discount = *c.MaxDiscount
		}
	case DiscountTypeFlat:
		discount = c.DiscountValue
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return valueobject.RoundMoney(discount)
}

// Redeem records one use of the coupon
func (c *Coupon) Redeem(now time.Time) error {
	if !c.IsActive {
		return ErrCouponInactive
	}
	if c.IsExpired(now) {
		return ErrCouponExpired
	}
	if c.IsExhausted() {
		return ErrCouponExhausted
	}
	c.UsedCount++
	c.Touch()
	return nil
}

// Label describes the discount, e.g. "10% off" or "₹50 off"
func (c *Coupon) Label() string {
	if c.DiscountType == DiscountTypePercent {
		return c.DiscountValue.String() + "% off"
	}
	return "₹" + c.DiscountValue.String() + " off"
}
