package promotion

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrSpinNotEligible is returned when a user spins before earning a new spin
var ErrSpinNotEligible = shared.NewDomainError("SPIN_NOT_ELIGIBLE", "You are not eligible to spin the wheel right now")

// Reasons reported by CheckEligibility
const (
	SpinReasonFirstSpin     = "first_spin"
	SpinReasonOrderComplete = "order_completed"
	SpinReasonCooldown      = "cooldown"
	SpinReasonNeedsOrder    = "order_required"
)

// Segment is one slice of the reward wheel
type Segment struct {
	Label         string          `mapstructure:"label" json:"label"`
	DiscountType  DiscountType    `mapstructure:"discount_type" json:"discount_type,omitempty"`
	DiscountValue decimal.Decimal `mapstructure:"discount_value" json:"discount_value"`
	Weight        int             `mapstructure:"weight" json:"-"`
}

// IsReward returns true if landing on the segment issues a coupon
func (s Segment) IsReward() bool {
	return s.DiscountType.IsValid() && s.DiscountValue.IsPositive()
}

// DefaultSegments is the standard wheel
func DefaultSegments() []Segment {
	return []Segment{
		{Label: "5% OFF", DiscountType: DiscountTypePercent, DiscountValue: decimal.NewFromInt(5), Weight: 35},
		{Label: "10% OFF", DiscountType: DiscountTypePercent, DiscountValue: decimal.NewFromInt(10), Weight: 25},
		{Label: "15% OFF", DiscountType: DiscountTypePercent, DiscountValue: decimal.NewFromInt(15), Weight: 10},
		{Label: "₹50 OFF", DiscountType: DiscountTypeFlat, DiscountValue: decimal.NewFromInt(50), Weight: 15},
		{Label: "₹100 OFF", DiscountType: DiscountTypeFlat, DiscountValue: decimal.NewFromInt(100), Weight: 5},
		{Label: "Better luck next time", Weight: 10},
	}
}

// Picker returns a uniform integer in [0, n)
type Picker interface {
	IntN(n int) int
}

// Wheel selects segments by weight
type Wheel struct {
	segments []Segment
	total    int
}

// NewWheel validates the segments and builds a wheel
func NewWheel(segments []Segment) (*Wheel, error) {
	if len(segments) == 0 {
		return nil, shared.NewDomainError("INVALID_WHEEL", "Wheel must have at least one segment")
	}
	total := 0
	for i, s := range segments {
		if s.Weight < 0 {
			return nil, shared.NewDomainError("INVALID_WHEEL", fmt.Sprintf("Segment %d has a negative weight", i))
		}
		if s.DiscountType == DiscountTypePercent && s.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return nil, shared.NewDomainError("INVALID_WHEEL", fmt.Sprintf("Segment %d exceeds 100%%", i))
		}
		total += s.Weight
	}
	if total == 0 {
		return nil, shared.NewDomainError("INVALID_WHEEL", "Wheel weights must add up to more than zero")
	}
	return &Wheel{segments: segments, total: total}, nil
}

// Segments returns the wheel segments in display order
func (w *Wheel) Segments() []Segment {
	out := make([]Segment, len(w.segments))
	copy(out, w.segments)
	return out
}

// Spin picks a segment and returns its index
func (w *Wheel) Spin(p Picker) (int, Segment) {
	n := p.IntN(w.total)
	for i, s := range w.segments {
		if n < s.Weight {
			return i, s
		}
		n -= s.Weight
	}
	last := len(w.segments) - 1
	return last, w.segments[last]
}

// Eligibility is the outcome of a spin eligibility check
type Eligibility struct {
	Eligible       bool
	Reason         string
	NextEligibleAt *time.Time
}

// CheckEligibility decides whether a user may spin. A user who never spun may
// spin once; after that each spin needs an order completed after the last spin,
// and at least cooldown must pass between spins.
func CheckEligibility(lastSpin, lastOrderCompletion *time.Time, now time.Time, cooldown time.Duration) Eligibility {
	if lastSpin == nil {
		return Eligibility{Eligible: true, Reason: SpinReasonFirstSpin}
	}
	next := lastSpin.Add(cooldown)
	if now.Before(next) {
		return Eligibility{Reason: SpinReasonCooldown, NextEligibleAt: &next}
	}
	if lastOrderCompletion == nil || !lastOrderCompletion.After(*lastSpin) {
		return Eligibility{Reason: SpinReasonNeedsOrder}
	}
	return Eligibility{Eligible: true, Reason: SpinReasonOrderComplete}
}

const spinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewSpinCode returns a random SPIN-XXXXXX code
func NewSpinCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate spin code: %w", err)
	}
	for i, b := range buf {
		buf[i] = spinCodeAlphabet[int(b)%len(spinCodeAlphabet)]
	}
	return "SPIN-" + string(buf), nil
}

// NewSpinRewardCoupon issues a personal single-use coupon for a winning segment
func NewSpinRewardCoupon(ownerID uuid.UUID, code string, seg Segment, minOrder decimal.Decimal, expiresAt time.Time) (*Coupon, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Spin reward needs an owner")
	}
	if !seg.IsReward() {
		return nil, shared.NewDomainError("NO_REWARD", "Segment does not carry a reward")
	}
	c := &Coupon{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              NormalizeCode(code),
		Description:       "Spin the wheel reward: " + seg.Label,
		MinOrderAmount:    minOrder,
		MaxUses:           1,
		ExpiresAt:         &expiresAt,
		IsActive:          true,
		OwnerID:           &ownerID,
		Source:            CouponSourceSpin,
	}
	if !couponCodePattern.MatchString(c.Code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Invalid spin coupon code")
	}
	if err := c.applyDiscount(seg.DiscountType, seg.DiscountValue, nil); err != nil {
		return nil, err
	}
	c.AddDomainEvent(NewCouponCreatedEvent(c))
	return c, nil
}
