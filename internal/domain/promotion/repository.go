package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CouponFilter filters the admin coupon list
type CouponFilter struct {
	Search   string
	Active   *bool
	Expired  *bool
	Source   CouponSource
	OwnerID  *uuid.UUID
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip
func (f CouponFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size bounded to 100
func (f CouponFilter) Limit() int {
	if f.PageSize <= 0 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}

// CouponRepository persists coupons
type CouponRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	FindAll(ctx context.Context, filter CouponFilter) ([]*Coupon, int64, error)
	// FindUsableByOwner returns personal coupons that are active, unused and unexpired
	FindUsableByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Coupon, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, coupon *Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SpinRecorder stores the outcome of a spin
type SpinRecorder interface {
	// RecordSpin stamps the user's last spin time and saves the reward coupon
	// (nil for no reward) in one transaction. previousSpin must match the stored
	// value, otherwise ErrSpinNotEligible is returned so concurrent spins count once.
	RecordSpin(ctx context.Context, userID uuid.UUID, previousSpin *time.Time, spunAt time.Time, reward *Coupon) error
}
