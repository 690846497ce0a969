package trade

import (
	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced          = "OrderPlaced"
	EventTypeOrderPaid            = "OrderPaid"
	EventTypeOrderPaymentFailed   = "OrderPaymentFailed"
	EventTypeOrderStatusChanged   = "OrderStatusChanged"
	EventTypeOrderCancelled       = "OrderCancelled"
	EventTypeOrderRefundInitiated = "OrderRefundInitiated"
	EventTypeOrderRefunded        = "OrderRefunded"
)

// OrderEvent is implemented by every order event so subscribers can route
// them to the customer without a type switch
type OrderEvent interface {
	shared.DomainEvent
	GetOrderID() uuid.UUID
	GetOrderNumber() string
	GetUserID() uuid.UUID
}

// orderRef carries the identifiers shared by all order events
type orderRef struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
}

func refOf(o *Order) orderRef {
	return orderRef{OrderID: o.ID, OrderNumber: o.OrderNumber, UserID: o.UserID}
}

// GetOrderID returns the order ID
func (r orderRef) GetOrderID() uuid.UUID { return r.OrderID }

// GetOrderNumber returns the human-readable order number
func (r orderRef) GetOrderNumber() string { return r.OrderNumber }

// GetUserID returns the customer ID
func (r orderRef) GetUserID() uuid.UUID { return r.UserID }

// OrderPlacedEvent is published when a customer places an order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	orderRef
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ItemCount     int             `json:"item_count"`
	CouponCode    string          `json:"coupon_code,omitempty"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		orderRef:        refOf(o),
		Total:           o.Total,
		PaymentMethod:   o.PaymentMethod,
		ItemCount:       o.ItemCount(),
		CouponCode:      o.CouponCode,
	}
}

// OrderPaidEvent is published when an online payment is captured
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	orderRef
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		orderRef:        refOf(o),
		PaymentID:       o.RazorpayPaymentID,
		Amount:          o.Total,
	}
}

// OrderPaymentFailedEvent is published when an online payment attempt fails
type OrderPaymentFailedEvent struct {
	shared.BaseDomainEvent
	orderRef
	Reason string `json:"reason,omitempty"`
}

// NewOrderPaymentFailedEvent creates a new OrderPaymentFailedEvent
func NewOrderPaymentFailedEvent(o *Order, reason string) *OrderPaymentFailedEvent {
	return &OrderPaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentFailed, AggregateTypeOrder, o.ID),
		orderRef:        refOf(o),
		Reason:          reason,
	}
}

// OrderStatusChangedEvent is published on every fulfilment status change
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	orderRef
	From   OrderStatus `json:"from"`
	To     OrderStatus `json:"to"`
	Reason string      `json:"reason,omitempty"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from OrderStatus, reason string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		orderRef:        refOf(o),
		From:            from,
		To:              o.Status,
		Reason:          reason,
	}
}

// OrderCancelledEvent is published when an order is cancelled by anyone
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	orderRef
	From        OrderStatus `json:"from"`
	ByCustomer  bool        `json:"by_customer"`
	Reason      string      `json:"reason,omitempty"`
	NeedsRefund bool        `json:"needs_refund"`
	CouponID    *uuid.UUID  `json:"coupon_id,omitempty"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, from OrderStatus) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		orderRef:        refOf(o),
		From:            from,
		ByCustomer:      o.Status == OrderStatusCancelledByUser,
		Reason:          o.CancelReason,
		NeedsRefund:     o.NeedsRefund(),
		CouponID:        o.CouponID,
	}
}

// OrderRefundInitiatedEvent is published when a refund is submitted to the gateway
type OrderRefundInitiatedEvent struct {
	shared.BaseDomainEvent
	orderRef
	RefundID string          `json:"refund_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewOrderRefundInitiatedEvent creates a new OrderRefundInitiatedEvent
func NewOrderRefundInitiatedEvent(o *Order, amount decimal.Decimal) *OrderRefundInitiatedEvent {
	return &OrderRefundInitiatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRefundInitiated, AggregateTypeOrder, o.ID),
		orderRef:        refOf(o),
		RefundID:        o.RefundID,
		Amount:          amount,
	}
}

// OrderRefundedEvent is published when the refund has been processed
type OrderRefundedEvent struct {
	shared.BaseDomainEvent
	orderRef
	RefundID string          `json:"refund_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewOrderRefundedEvent creates a new OrderRefundedEvent
func NewOrderRefundedEvent(o *Order) *OrderRefundedEvent {
	return &OrderRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRefunded, AggregateTypeOrder, o.ID),
		orderRef:        refOf(o),
		RefundID:        o.RefundID,
		Amount:          o.RefundAmount,
	}
}
