package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByGatewayOrderID finds the order a Razorpay order was created for
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)

	// FindByGatewayPaymentID finds the order paid by a Razorpay payment
	FindByGatewayPaymentID(ctx context.Context, paymentID string) (*Order, error)

	// FindAll finds orders matching the filter and returns the total count
	FindAll(ctx context.Context, filter OrderFilter) ([]*Order, int64, error)

	// FindExpiredUnpaid finds online orders still awaiting payment that were created before cutoff
	FindExpiredUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]*Order, error)

	// Place inserts a new order in one transaction: it reserves stock for
	// every item and redeems the coupon if one is applied. It returns
	// shared.ErrInsufficientStock or promotion.ErrCouponExhausted when a
	// guard fails, leaving nothing written.
	Place(ctx context.Context, order *Order) error

	// SaveWithLock updates the order header with optimistic locking
	SaveWithLock(ctx context.Context, order *Order) error

	// SaveAndRestock updates the order with optimistic locking and returns
	// the reserved stock of every item in the same transaction
	SaveAndRestock(ctx context.Context, order *Order) error

	// GenerateOrderNumber generates a unique order number (SF-YYYYMMDD-NNNNN)
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// OrderFilter contains filter options for listing orders
type OrderFilter struct {
	UserID        *uuid.UUID
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	Search        string
	From          *time.Time
	To            *time.Time

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewOrderFilter creates an OrderFilter with default paging and sorting
func NewOrderFilter() OrderFilter {
	return OrderFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// Offset returns the offset for pagination
func (f OrderFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size clamped to 1..100
func (f OrderFilter) Limit() int {
	if f.PageSize < 1 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
