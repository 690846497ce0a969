package promotion

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/promotion"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SpinServiceConfig holds the wheel rules
type SpinServiceConfig struct {
	Cooldown       time.Duration
	RewardTTL      time.Duration
	MinOrderAmount decimal.Decimal
	Segments       []promotion.Segment
}

type randomPicker struct{}

func (randomPicker) IntN(n int) int { return rand.IntN(n) }

// SpinService runs the reward wheel
type SpinService struct {
	userRepo       identity.UserRepository
	couponRepo     promotion.CouponRepository
	recorder       promotion.SpinRecorder
	wheel          *promotion.Wheel
	picker         promotion.Picker
	eventPublisher shared.EventPublisher
	config         SpinServiceConfig
	logger         *zap.Logger
	now            func() time.Time
	newCode        func() (string, error)
}

// NewSpinService creates a new SpinService
func NewSpinService(
	userRepo identity.UserRepository,
	couponRepo promotion.CouponRepository,
	recorder promotion.SpinRecorder,
	config SpinServiceConfig,
	logger *zap.Logger,
) (*SpinService, error) {
	if config.Cooldown <= 0 {
		config.Cooldown = 24 * time.Hour
	}
	if config.RewardTTL <= 0 {
		config.RewardTTL = 7 * 24 * time.Hour
	}
	if len(config.Segments) == 0 {
		config.Segments = promotion.DefaultSegments()
	}
	wheel, err := promotion.NewWheel(config.Segments)
	if err != nil {
		return nil, err
	}
	return &SpinService{
		userRepo:   userRepo,
		couponRepo: couponRepo,
		recorder:   recorder,
		wheel:      wheel,
		picker:     randomPicker{},
		config:     config,
		logger:     logger,
		now:        time.Now,
		newCode:    promotion.NewSpinCode,
	}, nil
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SpinService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Status reports whether the caller can spin and lists the wheel segments
func (s *SpinService) Status(ctx context.Context, userID uuid.UUID) (*SpinStatusResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	el := promotion.CheckEligibility(user.LastSpinTime, user.LastOrderCompletionTime, s.now(), s.config.Cooldown)
	return &SpinStatusResponse{
		Eligible:       el.Eligible,
		Reason:         el.Reason,
		NextEligibleAt: el.NextEligibleAt,
		LastSpinTime:   user.LastSpinTime,
		Segments:       s.segments(),
	}, nil
}

// Spin spins the wheel for the caller. The spin time is recorded whether or
// not the segment carries a reward; a reward becomes a personal coupon.
func (s *SpinService) Spin(ctx context.Context, userID uuid.UUID) (*SpinResultResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, shared.ErrForbidden
	}
	now := s.now()
	if el := promotion.CheckEligibility(user.LastSpinTime, user.LastOrderCompletionTime, now, s.config.Cooldown); !el.Eligible {
		return nil, promotion.ErrSpinNotEligible
	}

	index, seg := s.wheel.Spin(s.picker)

	var reward *promotion.Coupon
	if seg.IsReward() {
		code, err := s.uniqueCode(ctx)
		if err != nil {
			return nil, err
		}
		reward, err = promotion.NewSpinRewardCoupon(user.ID, code, seg, s.config.MinOrderAmount, now.Add(s.config.RewardTTL))
		if err != nil {
			return nil, err
		}
	}

	if err := s.recorder.RecordSpin(ctx, user.ID, user.LastSpinTime, now, reward); err != nil {
		return nil, err
	}

	s.logger.Info("wheel spun",
		zap.String("user_id", user.ID.String()),
		zap.String("segment", seg.Label),
		zap.Bool("won", reward != nil))

	result := &SpinResultResponse{
		SegmentIndex: index,
		Segment:      toSegmentResponse(index, seg),
		Won:          reward != nil,
		SpunAt:       now,
	}
	if reward != nil {
		resp := ToCouponResponse(reward)
		result.Coupon = &resp
		if err := shared.PublishAndClear(ctx, s.eventPublisher, reward); err != nil {
			s.logger.Warn("failed to publish coupon events", zap.String("code", reward.Code), zap.Error(err))
		}
	}
	return result, nil
}

const maxCodeAttempts = 5

func (s *SpinService) uniqueCode(ctx context.Context) (string, error) {
	for range maxCodeAttempts {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		exists, err := s.couponRepo.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique spin coupon code")
}

func (s *SpinService) segments() []SegmentResponse {
	segs := s.wheel.Segments()
	out := make([]SegmentResponse, len(segs))
	for i, seg := range segs {
		out[i] = toSegmentResponse(i, seg)
	}
	return out
}
