package promotion

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoupon(t *testing.T, dt DiscountType, value int64) *Coupon {
	t.Helper()
	c, err := NewCoupon("fresh10", dt, decimal.NewFromInt(value))
	require.NoError(t, err)
	return c
}

func TestNewCoupon(t *testing.T) {
	t.Run("normalizes code", func(t *testing.T) {
		c := newTestCoupon(t, DiscountTypePercent, 10)
		assert.Equal(t, "FRESH10", c.Code)
		assert.True(t, c.IsActive)
		assert.Equal(t, CouponSourceAdmin, c.Source)
		assert.Equal(t, 1, c.Version)
		assert.Len(t, c.GetDomainEvents(), 1)
	})

	t.Run("rejects bad codes", func(t *testing.T) {
		for _, code := range []string{"", "AB", "HAS SPACE", "TOO-LONG-CODE-THAT-GOES-PAST-32-CHARS"} {
			_, err := NewCoupon(code, DiscountTypeFlat, decimal.NewFromInt(10))
			assert.Error(t, err, code)
		}
	})

	t.Run("rejects percent over 100", func(t *testing.T) {
		_, err := NewCoupon("BIG", DiscountTypePercent, decimal.NewFromInt(101))
		assert.Error(t, err)
	})

	t.Run("rejects non positive value", func(t *testing.T) {
		_, err := NewCoupon("ZERO", DiscountTypeFlat, decimal.Zero)
		assert.Error(t, err)
	})
}

func TestCoupon_Validate(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	user := uuid.New()

	t.Run("percent discount", func(t *testing.T) {
		c := newTestCoupon(t, DiscountTypePercent, 10)
		d, err := c.Validate(decimal.RequireFromString("845.50"), user, now)
		require.NoError(t, err)
		assert.Equal(t, "84.55", d.String())
	})

	t.Run("percent discount respects cap", func(t *testing.T) {
		c := newTestCoupon(t, DiscountTypePercent, 20)
		limit := decimal.NewFromInt(100)
		require.NoError(t, c.SetDiscount(DiscountTypePercent, decimal.NewFromInt(20), &limit))
		d, err := c.Validate(decimal.NewFromInt(2000), user, now)
		require.NoError(t, err)
		assert.Equal(t, "100", d.String())
	})

	t.Run("flat discount never exceeds subtotal", func(t *testing.T) {
		c := newTestCoupon(t, DiscountTypeFlat, 500)
		d, err := c.Validate(decimal.NewFromInt(300), user, now)
		require.NoError(t, err)
		assert.Equal(t, "300", d.String())
	})

	t.Run("minimum order", func(t *testing.T) {
		c := newTestCoupon(t, DiscountTypeFlat, 50)
		require.NoError(t, c.SetLimits(decimal.NewFromInt(499), 0, nil))
		_, err := c.Validate(decimal.NewFromInt(400), user, now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "99.00")
	})

	t.Run("inactive", func(t *testing.T) {
		c := newTestCoupon(t, DiscountTypeFlat, 50)
		c.Deactivate()
		_, err := c.Validate(decimal.NewFromInt(400), user, now)
		assert.ErrorIs(t, err, ErrCouponInactive)
	})

	t.Run("expired", func(t *testing.T) {
		c := newTestCoupon(t, DiscountTypeFlat, 50)
		past := now.Add(-time.Minute)
		require.NoError(t, c.SetLimits(decimal.Zero, 0, &past))
		_, err := c.Validate(decimal.NewFromInt(400), user, now)
		assert.ErrorIs(t, err, ErrCouponExpired)
	})

	t.Run("exhausted", func(t *testing.T) {
		c := newTestCoupon(t, DiscountTypeFlat, 50)
		require.NoError(t, c.SetLimits(decimal.Zero, 1, nil))
		require.NoError(t, c.Redeem(now))
		_, err := c.Validate(decimal.NewFromInt(400), user, now)
		assert.ErrorIs(t, err, ErrCouponExhausted)
		assert.Equal(t, 0, c.RemainingUses())
	})

	t.Run("personal coupon hidden from other users", func(t *testing.T) {
		seg := DefaultSegments()[3]
		c, err := NewSpinRewardCoupon(user, "SPIN-ABC234", seg, decimal.Zero, now.Add(time.Hour))
		require.NoError(t, err)

		_, err = c.Validate(decimal.NewFromInt(400), uuid.New(), now)
		assert.ErrorIs(t, err, ErrCouponNotFound)

		d, err := c.Validate(decimal.NewFromInt(400), user, now)
		require.NoError(t, err)
		assert.Equal(t, "50", d.String())
	})
}

func TestCoupon_SetLimits(t *testing.T) {
	c := newTestCoupon(t, DiscountTypeFlat, 50)
	require.NoError(t, c.SetLimits(decimal.Zero, 5, nil))
	c.UsedCount = 3
	assert.Error(t, c.SetLimits(decimal.Zero, 2, nil))
	assert.Error(t, c.SetLimits(decimal.NewFromInt(-1), 0, nil))
	assert.Equal(t, 2, c.RemainingUses())
}

func TestCoupon_Label(t *testing.T) {
	assert.Equal(t, "10% off", newTestCoupon(t, DiscountTypePercent, 10).Label())
	assert.Equal(t, "₹50 off", newTestCoupon(t, DiscountTypeFlat, 50).Label())
}
