package promotion

import (
	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCoupon = "Coupon"

// EventTypeCouponCreated is the event type for newly issued coupons
const EventTypeCouponCreated = "CouponCreated"

// CouponCreatedEvent is published when a coupon is issued
type CouponCreatedEvent struct {
	shared.BaseDomainEvent
	CouponID uuid.UUID    `json:"coupon_id"`
	Code     string       `json:"code"`
	Source   CouponSource `json:"source"`
	OwnerID  *uuid.UUID   `json:"owner_id,omitempty"`
}

// NewCouponCreatedEvent creates a new CouponCreatedEvent
func NewCouponCreatedEvent(c *Coupon) *CouponCreatedEvent {
	return &CouponCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCouponCreated, AggregateTypeCoupon, c.ID),
		CouponID:        c.ID,
		Code:            c.Code,
		Source:          c.Source,
		OwnerID:         c.OwnerID,
	}
}
