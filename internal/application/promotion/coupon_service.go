package promotion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/promotion"
	"github.com/seafresh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CouponService handles coupon administration and checkout validation
type CouponService struct {
	couponRepo     promotion.CouponRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewCouponService creates a new CouponService
func NewCouponService(couponRepo promotion.CouponRepository, logger *zap.Logger) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CouponService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Validate returns the discount a code gives the caller on subtotal
func (s *CouponService) Validate(ctx context.Context, userID uuid.UUID, req ValidateCouponRequest) (*CouponValidationResponse, error) {
	coupon, err := s.couponRepo.FindByCode(ctx, promotion.NormalizeCode(req.Code))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, promotion.ErrCouponNotFound
		}
		return nil, err
	}
	discount, err := coupon.Validate(req.Subtotal, userID, s.now())
	if err != nil {
		return nil, err
	}
	return &CouponValidationResponse{
		Code:        coupon.Code,
		Label:       coupon.Label(),
		Description: coupon.Description,
		Discount:    discount,
		Subtotal:    req.Subtotal,
	}, nil
}

// Create creates an admin coupon
func (s *CouponService) Create(ctx context.Context, req CreateCouponRequest) (*CouponResponse, error) {
	coupon, err := promotion.NewCoupon(req.Code, promotion.DiscountType(req.DiscountType), req.DiscountValue)
	if err != nil {
		return nil, err
	}

	exists, err := s.couponRepo.ExistsByCode(ctx, coupon.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Coupon code "+coupon.Code+" already exists")
	}

	if req.MaxDiscount != nil {
		if err := coupon.SetDiscount(coupon.DiscountType, coupon.DiscountValue, req.MaxDiscount); err != nil {
			return nil, err
		}
	}
	if err := coupon.SetLimits(req.MinOrderAmount, req.MaxUses, req.ExpiresAt); err != nil {
		return nil, err
	}
	coupon.SetDescription(req.Description)
	if req.IsActive != nil && !*req.IsActive {
		coupon.Deactivate()
	}

	if err := s.couponRepo.Save(ctx, coupon); err != nil {
		return nil, err
	}
	s.logger.Info("coupon created", zap.String("code", coupon.Code))
	s.publish(ctx, coupon)

	response := ToCouponResponse(coupon)
	return &response, nil
}

// GetByID retrieves a coupon by ID
func (s *CouponService) GetByID(ctx context.Context, id uuid.UUID) (*CouponResponse, error) {
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCouponResponse(coupon)
	return &response, nil
}

// Update applies a partial update to a coupon
func (s *CouponService) Update(ctx context.Context, id uuid.UUID, req UpdateCouponRequest) (*CouponResponse, error) {
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DiscountType != nil || req.DiscountValue != nil || req.MaxDiscount != nil {
		discountType := coupon.DiscountType
		if req.DiscountType != nil {
			discountType = promotion.DiscountType(*req.DiscountType)
		}
		value := coupon.DiscountValue
		if req.DiscountValue != nil {
			value = *req.DiscountValue
		}
		maxDiscount := coupon.MaxDiscount
		if req.MaxDiscount != nil {
			maxDiscount = req.MaxDiscount
		}
		if err := coupon.SetDiscount(discountType, value, maxDiscount); err != nil {
			return nil, err
		}
	}

	if req.MinOrderAmount != nil || req.MaxUses != nil || req.ExpiresAt != nil || req.ClearExpiry {
		minOrder := coupon.MinOrderAmount
		if req.MinOrderAmount != nil {
			minOrder = *req.MinOrderAmount
		}
		maxUses := coupon.MaxUses
		if req.MaxUses != nil {
			maxUses = *req.MaxUses
		}
		expiresAt := coupon.ExpiresAt
		if req.ExpiresAt != nil {
			expiresAt = req.ExpiresAt
		}
		if req.ClearExpiry {
			expiresAt = nil
		}
		if err := coupon.SetLimits(minOrder, maxUses, expiresAt); err != nil {
			return nil, err
		}
	}

	if req.Description != nil {
		coupon.SetDescription(*req.Description)
	}
	if req.IsActive != nil {
		if *req.IsActive {
			coupon.Activate()
		} else {
			coupon.Deactivate()
		}
	}

	if err := s.couponRepo.Save(ctx, coupon); err != nil {
		return nil, err
	}
	s.publish(ctx, coupon)

	response := ToCouponResponse(coupon)
	return &response, nil
}

// Delete removes a coupon. Orders keep the code they were placed with.
func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.couponRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("coupon deleted", zap.String("code", coupon.Code))
	return nil
}

// List lists coupons (admin)
func (s *CouponService) List(ctx context.Context, filter CouponListFilter) ([]CouponResponse, int64, error) {
	coupons, total, err := s.couponRepo.FindAll(ctx, promotion.CouponFilter{
		Search:   strings.TrimSpace(filter.Search),
		Active:   filter.Active,
		Expired:  filter.Expired,
		Source:   promotion.CouponSource(filter.Source),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}
	return ToCouponResponses(coupons), total, nil
}

// Mine lists the caller's personal coupons that can still be used
func (s *CouponService) Mine(ctx context.Context, userID uuid.UUID) ([]CouponResponse, error) {
	coupons, err := s.couponRepo.FindUsableByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToCouponResponses(coupons), nil
}

func (s *CouponService) publish(ctx context.Context, coupon *promotion.Coupon) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, coupon); err != nil {
		s.logger.Warn("failed to publish coupon events", zap.String("code", coupon.Code), zap.Error(err))
	}
}
