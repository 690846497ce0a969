package trade

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "Pending"
	OrderStatusProcessing      OrderStatus = "Processing"
	OrderStatusShipped         OrderStatus = "Shipped"
	OrderStatusDelivered       OrderStatus = "Delivered"
	OrderStatusCancelled       OrderStatus = "Cancelled"
	OrderStatusCancelledByUser OrderStatus = "Cancelled by User"
)

// AllOrderStatuses lists the statuses in lifecycle order
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
		OrderStatusCancelledByUser,
	}
}

// IsValid checks if the status is a valid order status
func (s OrderStatus) IsValid() bool {
	for _, known := range AllOrderStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s.IsCancelled()
}

// IsCancelled returns true for both admin and user cancellations
func (s OrderStatus) IsCancelled() bool {
	return s == OrderStatusCancelled || s == OrderStatusCancelledByUser
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled || target == OrderStatusCancelledByUser
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled || target == OrderStatusCancelledByUser
	case OrderStatusShipped:
		return target == OrderStatusDelivered || target == OrderStatusCancelled
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusCancelledByUser:
		return false // Terminal states
	}
	return false
}

// PaymentMethod is how the customer pays for the order
type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodCOD      PaymentMethod = "cod"
)

// IsValid checks if the payment method is supported
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodRazorpay || m == PaymentMethodCOD
}

// PaymentStatus tracks the money side of the order
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusRefundPending PaymentStatus = "refund_pending"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)

// IsValid checks if the payment status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
		PaymentStatusRefundPending, PaymentStatusRefunded:
		return true
	}
	return false
}
