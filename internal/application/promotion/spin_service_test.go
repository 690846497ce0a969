package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/promotion"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedPicker int

func (p fixedPicker) IntN(int) int { return int(p) }

type spinFixture struct {
	users     *MockUserRepository
	coupons   *MockCouponRepository
	recorder  *MockSpinRecorder
	publisher *MockEventPublisher
	service   *SpinService
	now       time.Time
}

func newSpinFixture(t *testing.T, pick int) *spinFixture {
	t.Helper()
	f := &spinFixture{
		users:     new(MockUserRepository),
		coupons:   new(MockCouponRepository),
		recorder:  new(MockSpinRecorder),
		publisher: new(MockEventPublisher),
		now:       time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC),
	}
	svc, err := NewSpinService(f.users, f.coupons, f.recorder, SpinServiceConfig{
		MinOrderAmount: decimal.NewFromInt(299),
	}, zap.NewNop())
	require.NoError(t, err)
	svc.picker = fixedPicker(pick)
	svc.now = func() time.Time { return f.now }
	svc.newCode = func() (string, error) { return "SPIN-ABC234", nil }
	svc.SetEventPublisher(f.publisher)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.service = svc
	return f
}

func spinUser(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewGoogleUser("Fathima", "fathima@example.com", "g-77", "")
	require.NoError(t, err)
	return u
}

func TestNewSpinService_RejectsBadWheel(t *testing.T) {
	_, err := NewSpinService(nil, nil, nil, SpinServiceConfig{
		Segments: []promotion.Segment{{Label: "Nothing", Weight: 0}},
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestSpinService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("first spin", func(t *testing.T) {
		f := newSpinFixture(t, 0)
		user := spinUser(t)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)

		status, err := f.service.Status(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, status.Eligible)
		assert.Equal(t, promotion.SpinReasonFirstSpin, status.Reason)
		assert.Len(t, status.Segments, len(promotion.DefaultSegments()))
	})

	t.Run("cooldown", func(t *testing.T) {
		f := newSpinFixture(t, 0)
		user := spinUser(t)
		last := f.now.Add(-2 * time.Hour)
		user.LastSpinTime = &last
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)

		status, err := f.service.Status(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, status.Eligible)
		assert.Equal(t, promotion.SpinReasonCooldown, status.Reason)
		require.NotNil(t, status.NextEligibleAt)
		assert.Equal(t, last.Add(24*time.Hour), *status.NextEligibleAt)
	})
}

func TestSpinService_Spin(t *testing.T) {
	ctx := context.Background()

	t.Run("win issues personal coupon", func(t *testing.T) {
		f := newSpinFixture(t, 0)
		user := spinUser(t)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)
		f.coupons.On("ExistsByCode", ctx, "SPIN-ABC234").Return(false, nil)
		f.recorder.On("RecordSpin", ctx, user.ID, (*time.Time)(nil), f.now, mock.MatchedBy(func(c *promotion.Coupon) bool {
			return c != nil && c.Code == "SPIN-ABC234" && c.MaxUses == 1 && *c.OwnerID == user.ID
		})).Return(nil)

		result, err := f.service.Spin(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, result.Won)
		assert.Equal(t, 0, result.SegmentIndex)
		require.NotNil(t, result.Coupon)
		assert.Equal(t, "spin", result.Coupon.Source)
		require.NotNil(t, result.Coupon.ExpiresAt)
		assert.Equal(t, f.now.Add(7*24*time.Hour), *result.Coupon.ExpiresAt)
		assert.True(t, result.Coupon.MinOrderAmount.Equal(decimal.NewFromInt(299)))
		f.recorder.AssertExpectations(t)
		f.publisher.AssertCalled(t, "Publish", ctx, mock.Anything)
	})

	t.Run("no reward still records the spin", func(t *testing.T) {
		f := newSpinFixture(t, 99)
		user := spinUser(t)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)
		f.recorder.On("RecordSpin", ctx, user.ID, (*time.Time)(nil), f.now, (*promotion.Coupon)(nil)).Return(nil)

		result, err := f.service.Spin(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, result.Won)
		assert.Nil(t, result.Coupon)
		f.coupons.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("needs completed order after last spin", func(t *testing.T) {
		f := newSpinFixture(t, 0)
		user := spinUser(t)
		last := f.now.Add(-72 * time.Hour)
		completed := last.Add(-time.Hour)
		user.LastSpinTime = &last
		user.LastOrderCompletionTime = &completed
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := f.service.Spin(ctx, user.ID)
		assert.ErrorIs(t, err, promotion.ErrSpinNotEligible)
		f.recorder.AssertNotCalled(t, "RecordSpin", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("eligible again after delivery", func(t *testing.T) {
		f := newSpinFixture(t, 99)
		user := spinUser(t)
		last := f.now.Add(-72 * time.Hour)
		completed := last.Add(time.Hour)
		user.LastSpinTime = &last
		user.LastOrderCompletionTime = &completed
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)
		f.recorder.On("RecordSpin", ctx, user.ID, &last, f.now, (*promotion.Coupon)(nil)).Return(nil)

		_, err := f.service.Spin(ctx, user.ID)
		require.NoError(t, err)
	})

	t.Run("concurrent spin loses", func(t *testing.T) {
		f := newSpinFixture(t, 99)
		user := spinUser(t)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)
		f.recorder.On("RecordSpin", ctx, user.ID, mock.Anything, mock.Anything, mock.Anything).Return(promotion.ErrSpinNotEligible)

		_, err := f.service.Spin(ctx, user.ID)
		assert.ErrorIs(t, err, promotion.ErrSpinNotEligible)
	})

	t.Run("code collision retries", func(t *testing.T) {
		f := newSpinFixture(t, 0)
		codes := []string{"SPIN-TAKEN2", "SPIN-FREE22"}
		f.service.newCode = func() (string, error) {
			c := codes[0]
			codes = codes[1:]
			return c, nil
		}
		user := spinUser(t)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)
		f.coupons.On("ExistsByCode", ctx, "SPIN-TAKEN2").Return(true, nil)
		f.coupons.On("ExistsByCode", ctx, "SPIN-FREE22").Return(false, nil)
		f.recorder.On("RecordSpin", ctx, user.ID, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.Spin(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "SPIN-FREE22", result.Coupon.Code)
	})

	t.Run("blocked user", func(t *testing.T) {
		f := newSpinFixture(t, 0)
		user := spinUser(t)
		require.NoError(t, user.Block())
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)

		_, err := f.service.Spin(ctx, user.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
