package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/promotion"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCouponRepository implements promotion.CouponRepository and
// promotion.SpinRecorder using GORM
type GormCouponRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormCouponRepository creates a new GormCouponRepository
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db, now: time.Now}
}

// FindByID finds a coupon by ID
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Coupon, error) {
	var model models.CouponModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a coupon by its normalized code
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*promotion.Coupon, error) {
	var model models.CouponModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", promotion.NormalizeCode(code)).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists coupons for the admin area
func (r *GormCouponRepository) FindAll(ctx context.Context, filter promotion.CouponFilter) ([]*promotion.Coupon, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CouponModel{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(LOWER(code) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.Expired != nil {
		now := r.now()
		if *filter.Expired {
			query = query.Where("expires_at IS NOT NULL AND expires_at <= ?", now)
		} else {
			query = query.Where("(expires_at IS NULL OR expires_at > ?)", now)
		}
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CouponModel
	if err := query.Order("created_at DESC").Offset(filter.Offset()).Limit(filter.Limit()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toCoupons(rows), total, nil
}

// FindUsableByOwner returns personal coupons that are active, unused and unexpired
func (r *GormCouponRepository) FindUsableByOwner(ctx context.Context, ownerID uuid.UUID) ([]*promotion.Coupon, error) {
	var rows []models.CouponModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ? AND (max_uses = 0 OR used_count < max_uses) AND (expires_at IS NULL OR expires_at > ?)",
			ownerID, true, r.now()).
		Order("expires_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCoupons(rows), nil
}

// ExistsByCode checks if a code is already taken
func (r *GormCouponRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CouponModel{}).
		Where("code = ?", promotion.NormalizeCode(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a coupon. The redemption counter is only moved by
// order placement, so an admin edit never rolls it back.
func (r *GormCouponRepository) Save(ctx context.Context, coupon *promotion.Coupon) error {
	model := models.CouponModelFromDomain(coupon)
	db := r.db.WithContext(ctx)
	result := db.Model(&models.CouponModel{}).
		Where("id = ?", coupon.ID).
		Select("*").
		Omit("id", "created_at", "used_count").
		Updates(model)
	if result.Error != nil {
		return r.saveError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if err := db.Create(model).Error; err != nil {
		return r.saveError(err)
	}
	return nil
}

func (r *GormCouponRepository) saveError(err error) error {
	if errors.Is(translate(err), shared.ErrAlreadyExists) {
		return shared.NewDomainError("COUPON_EXISTS", "A coupon with this code already exists")
	}
	return fmt.Errorf("save coupon: %w", err)
}

// Delete deletes a coupon
func (r *GormCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CouponModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RecordSpin stamps the user's spin time, compare-and-set on the previous
// value, and stores the reward coupon in the same transaction.
func (r *GormCouponRepository) RecordSpin(ctx context.Context, userID uuid.UUID, previousSpin *time.Time, spunAt time.Time, reward *promotion.Coupon) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.UserModel{}).Where("id = ?", userID)
		if previousSpin == nil {
			query = query.Where("last_spin_time IS NULL")
		} else {
			query = query.Where("last_spin_time = ?", *previousSpin)
		}
		result := query.Update("last_spin_time", spunAt)
		if result.Error != nil {
			return fmt.Errorf("record spin: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return promotion.ErrSpinNotEligible
		}
		if reward == nil {
			return nil
		}
		if err := tx.Create(models.CouponModelFromDomain(reward)).Error; err != nil {
			return r.saveError(err)
		}
		return nil
	})
}

func toCoupons(rows []models.CouponModel) []*promotion.Coupon {
	out := make([]*promotion.Coupon, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
