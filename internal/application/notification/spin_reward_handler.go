package notification

import (
	"context"
	"fmt"

	"github.com/seafresh/backend/internal/domain/notification"
	"github.com/seafresh/backend/internal/domain/promotion"
	"github.com/seafresh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SpinRewardHandler notifies a customer when the spin wheel issues them a coupon
type SpinRewardHandler struct {
	notifications *NotificationService
	logger        *zap.Logger
}

// NewSpinRewardHandler creates a new SpinRewardHandler
func NewSpinRewardHandler(notifications *NotificationService, logger *zap.Logger) *SpinRewardHandler {
	return &SpinRewardHandler{notifications: notifications, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SpinRewardHandler) EventTypes() []string {
	return []string{promotion.EventTypeCouponCreated}
}

// Handle processes a CouponCreated event
func (h *SpinRewardHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*promotion.CouponCreatedEvent)
	if !ok {
		h.logger.Error("Unexpected event type",
			zap.String("expected", "CouponCreatedEvent"),
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %T", event)
	}
	if e.Source != promotion.CouponSourceSpin || e.OwnerID == nil {
		return nil
	}

	return h.notifications.Notify(ctx, *e.OwnerID, notification.TypePromotion,
		"You won a coupon!",
		fmt.Sprintf("Use code %s at checkout before it expires.", e.Code),
		"/coupons")
}
