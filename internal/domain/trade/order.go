package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const (
	maxNotesLength        = 500
	maxCancelReasonLength = 500
)

// OrderItem represents a line item in an order.
// Name, image and price are copied from the product at checkout.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	ImageURL    string
	Unit        string
	UnitPrice   decimal.Decimal
	Quantity    int
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// NewOrderItem describes a line the customer wants to buy
type NewOrderItem struct {
	ProductID uuid.UUID
	Name      string
	ImageURL  string
	Unit      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// AppliedCoupon records the coupon used on an order
type AppliedCoupon struct {
	CouponID uuid.UUID
	Code     string
	Discount decimal.Decimal
}

// Order is the aggregate root for a customer purchase
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber       string
	UserID            uuid.UUID
	Items             []OrderItem
	ShippingAddress   valueobject.Address
	PaymentMethod     PaymentMethod
	PaymentStatus     PaymentStatus
	Subtotal          decimal.Decimal
	Discount          decimal.Decimal
	ShippingFee       decimal.Decimal
	Total             decimal.Decimal
	CouponID          *uuid.UUID
	CouponCode        string
	Status            OrderStatus
	CancelReason      string
	Notes             string
	RazorpayOrderID   string
	RazorpayPaymentID string
	RefundID          string
	RefundAmount      decimal.Decimal
	PaidAt            *time.Time
	ProcessingAt      *time.Time
	ShippedAt         *time.Time
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
	RefundedAt        *time.Time
}

// NewOrder builds an order from priced line items.
// Cash on delivery orders start in Processing; online payments wait in Pending.
func NewOrder(
	orderNumber string,
	userID uuid.UUID,
	items []NewOrderItem,
	address valueobject.Address,
	method PaymentMethod,
	coupon *AppliedCoupon,
	policy PricingPolicy,
) (*Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must contain at least one item")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be razorpay or cod")
	}
	if err := address.Validate(); err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		UserID:            userID,
		Items:             make([]OrderItem, 0, len(items)),
		ShippingAddress:   address,
		PaymentMethod:     method,
		PaymentStatus:     PaymentStatusPending,
		Status:            OrderStatusPending,
		RefundAmount:      decimal.Zero,
	}

	seen := make(map[uuid.UUID]bool, len(items))
	subtotal := decimal.Zero
	for _, in := range items {
		if seen[in.ProductID] {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Each product can appear only once per order")
		}
		seen[in.ProductID] = true

		item, err := order.newItem(in)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
		subtotal = subtotal.Add(item.Amount)
	}

	discount := decimal.Zero
	if coupon != nil {
		discount = coupon.Discount
		couponID := coupon.CouponID
		order.CouponID = &couponID
		order.CouponCode = coupon.Code
	}

	pricing := policy.Price(subtotal, discount)
	order.Subtotal = pricing.Subtotal
	order.Discount = pricing.Discount
	order.ShippingFee = pricing.ShippingFee
	order.Total = pricing.Total

	if method == PaymentMethodCOD {
		now := order.CreatedAt
		order.Status = OrderStatusProcessing
		order.ProcessingAt = &now
	}

	order.AddDomainEvent(NewOrderPlacedEvent(order))

	return order, nil
}

func (o *Order) newItem(in NewOrderItem) (OrderItem, error) {
	if in.ProductID == uuid.Nil {
		return OrderItem{}, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if in.Quantity <= 0 {
		return OrderItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if in.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return OrderItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	return OrderItem{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   in.ProductID,
		ProductName: in.Name,
		ImageURL:    in.ImageURL,
		Unit:        in.Unit,
		UnitPrice:   in.UnitPrice,
		Quantity:    in.Quantity,
		Amount:      valueobject.RoundMoney(in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))),
		CreatedAt:   o.CreatedAt,
	}, nil
}

// SetNotes sets delivery notes from the customer
func (o *Order) SetNotes(notes string) error {
	notes = strings.TrimSpace(notes)
	if len(notes) > maxNotesLength {
		return shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 500 characters")
	}
	o.Notes = notes
	return nil
}

// IsOwnedBy returns true if the order belongs to the user
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// IsPaid returns true once money has been captured and not returned
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// ItemCount returns the total number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// AwaitsOnlinePayment returns true if the customer still has to pay via Razorpay
func (o *Order) AwaitsOnlinePayment() bool {
	return o.PaymentMethod == PaymentMethodRazorpay &&
		o.Status == OrderStatusPending &&
		(o.PaymentStatus == PaymentStatusPending || o.PaymentStatus == PaymentStatusFailed)
}

// IsExpiredUnpaid returns true if an online payment was not completed within ttl
func (o *Order) IsExpiredUnpaid(now time.Time, ttl time.Duration) bool {
	return o.AwaitsOnlinePayment() && o.CreatedAt.Add(ttl).Before(now)
}

// AttachGatewayOrder stores the Razorpay order created for this order
func (o *Order) AttachGatewayOrder(gatewayOrderID string) error {
	if !o.AwaitsOnlinePayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Order %s is not awaiting online payment", o.OrderNumber))
	}
	if strings.TrimSpace(gatewayOrderID) == "" {
		return shared.NewDomainError("INVALID_GATEWAY_ORDER", "Gateway order ID cannot be empty")
	}
	o.RazorpayOrderID = gatewayOrderID
	o.Touch()
	return nil
}

// MarkPaid records a captured online payment. A Pending order moves to
// Processing; a cancelled order keeps its status so the payment can be refunded.
func (o *Order) MarkPaid(paymentID string) error {
	if o.PaymentMethod != PaymentMethodRazorpay {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Only online orders can be marked paid by the gateway")
	}
	if o.PaymentStatus != PaymentStatusPending && o.PaymentStatus != PaymentStatusFailed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark payment as paid in %s state", o.PaymentStatus))
	}
	if strings.TrimSpace(paymentID) == "" {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}

	now := time.Now()
	o.PaymentStatus = PaymentStatusPaid
	o.RazorpayPaymentID = paymentID
	o.PaidAt = &now

	if o.Status == OrderStatusPending {
		o.Status = OrderStatusProcessing
		o.ProcessingAt = &now
		o.AddDomainEvent(NewOrderStatusChangedEvent(o, OrderStatusPending, ""))
	}
	o.Touch()

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// MarkPaymentFailed records a failed online payment attempt
func (o *Order) MarkPaymentFailed(reason string) error {
	if o.PaymentStatus != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail payment in %s state", o.PaymentStatus))
	}
	o.PaymentStatus = PaymentStatusFailed
	o.Touch()
	o.AddDomainEvent(NewOrderPaymentFailedEvent(o, reason))
	return nil
}

// UpdateStatus moves the order along the fulfilment lifecycle (admin action)
func (o *Order) UpdateStatus(target OrderStatus, reason string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if target == OrderStatusCancelledByUser {
		return shared.NewDomainError("INVALID_STATUS", "Only the customer can cancel an order as Cancelled by User")
	}
	if target.IsCancelled() {
		return o.cancel(target, reason)
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change order from %s to %s", o.Status, target))
	}
	if target == OrderStatusProcessing && o.AwaitsOnlinePayment() {
		return shared.NewDomainError("PAYMENT_REQUIRED", "Online payment has not been received for this order")
	}

	from := o.Status
	now := time.Now()
	o.Status = target

	switch target {
	case OrderStatusProcessing:
		o.ProcessingAt = &now
	case OrderStatusShipped:
		o.ShippedAt = &now
	case OrderStatusDelivered:
		o.DeliveredAt = &now
		if o.PaymentMethod == PaymentMethodCOD && o.PaymentStatus == PaymentStatusPending {
			o.PaymentStatus = PaymentStatusPaid
			o.PaidAt = &now
		}
	}
	o.Touch()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, reason))

	return nil
}

// CancelByUser cancels the order on behalf of its owner.
// Only orders that have not shipped can be cancelled by the customer.
func (o *Order) CancelByUser(userID uuid.UUID, reason string) error {
	if !o.IsOwnedBy(userID) {
		return shared.ErrNotFound
	}
	if o.Status != OrderStatusPending && o.Status != OrderStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Order cannot be cancelled once it is %s", o.Status))
	}
	if strings.TrimSpace(reason) == "" {
		reason = "Cancelled by customer"
	}
	return o.cancel(OrderStatusCancelledByUser, reason)
}

// CancelUnpaid cancels an online order whose payment never arrived
func (o *Order) CancelUnpaid() error {
	if !o.AwaitsOnlinePayment() {
		return shared.NewDomainError("INVALID_STATE", "Order is not awaiting payment")
	}
	return o.cancel(OrderStatusCancelled, "Payment not completed")
}

func (o *Order) cancel(target OrderStatus, reason string) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > maxCancelReasonLength {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason cannot exceed 500 characters")
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	o.CancelReason = reason
	o.CancelledAt = &now
	o.Touch()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, reason))
	o.AddDomainEvent(NewOrderCancelledEvent(o, from))

	return nil
}

// NeedsRefund returns true if the order is cancelled but money is still held
func (o *Order) NeedsRefund() bool {
	return o.Status.IsCancelled() && o.PaymentStatus == PaymentStatusPaid && o.PaymentMethod == PaymentMethodRazorpay
}

// RefundableAmount is what can still be returned to the customer
func (o *Order) RefundableAmount() decimal.Decimal {
	return o.Total.Sub(o.RefundAmount)
}

// ValidateRefund checks that amount can be refunded right now
func (o *Order) ValidateRefund(amount decimal.Decimal) error {
	if !o.NeedsRefund() {
		return shared.NewDomainError("NOT_REFUNDABLE", "Only cancelled orders with a captured online payment can be refunded")
	}
	if o.RazorpayPaymentID == "" {
		return shared.NewDomainError("NOT_REFUNDABLE", "Order has no captured payment")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	if amount.GreaterThan(o.RefundableAmount()) {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount exceeds the amount paid")
	}
	return nil
}

// StartRefund records a refund submitted to the gateway
func (o *Order) StartRefund(refundID string, amount decimal.Decimal) error {
	if err := o.ValidateRefund(amount); err != nil {
		return err
	}
	o.PaymentStatus = PaymentStatusRefundPending
	o.RefundID = refundID
	o.RefundAmount = o.RefundAmount.Add(amount)
	o.Touch()

	o.AddDomainEvent(NewOrderRefundInitiatedEvent(o, amount))

	return nil
}

// CompleteRefund records that the gateway has returned the money
func (o *Order) CompleteRefund(refundID string) error {
	if o.PaymentStatus == PaymentStatusRefunded {
		return nil
	}
	if o.PaymentStatus != PaymentStatusRefundPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("No refund in progress for order %s", o.OrderNumber))
	}
	if refundID != "" {
		o.RefundID = refundID
	}
	now := time.Now()
	o.PaymentStatus = PaymentStatusRefunded
	o.RefundedAt = &now
	o.Touch()

	o.AddDomainEvent(NewOrderRefundedEvent(o))

	return nil
}

// FailRefund returns a refund in progress to paid so it can be retried
func (o *Order) FailRefund() error {
	if o.PaymentStatus != PaymentStatusRefundPending {
		return shared.NewDomainError("INVALID_STATE", "No refund in progress")
	}
	o.PaymentStatus = PaymentStatusPaid
	o.RefundAmount = decimal.Zero
	o.Touch()
	return nil
}
