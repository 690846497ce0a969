package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
	"github.com/seafresh/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CartItemRequest is one line of a cart
type CartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// QuoteRequest prices a cart without placing an order
type QuoteRequest struct {
	Items      []CartItemRequest `json:"items" binding:"required,min=1,max=50,dive"`
	CouponCode string            `json:"coupon_code" binding:"max=32"`
}

// PlaceOrderRequest places an order for the signed-in user
type PlaceOrderRequest struct {
	Items           []CartItemRequest   `json:"items" binding:"required,min=1,max=50,dive"`
	CouponCode      string              `json:"coupon_code" binding:"max=32"`
	ShippingAddress valueobject.Address `json:"shipping_address" binding:"required"`
	PaymentMethod   string              `json:"payment_method" binding:"required,oneof=razorpay cod"`
	Notes           string              `json:"notes" binding:"max=500"`
	SaveAddress     bool                `json:"save_address"`
}

// CancelOrderRequest is the customer's cancellation
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdateOrderStatusRequest is an admin status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"max=500"`
}

// RefundOrderRequest is an admin refund; Amount defaults to everything still refundable
type RefundOrderRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason" binding:"max=500"`
}

// OrderListFilter represents filter options for order lists
type OrderListFilter struct {
	Status        string     `form:"status"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=pending paid failed refund_pending refunded"`
	PaymentMethod string     `form:"payment_method" binding:"omitempty,oneof=razorpay cod"`
	Search        string     `form:"search"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy        string     `form:"sort_by" binding:"omitempty,oneof=created_at total order_number status"`
	SortOrder     string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// QuoteItemResponse is a priced cart line
type QuoteItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// QuoteResponse is the price breakdown of a cart
type QuoteResponse struct {
	Items                 []QuoteItemResponse `json:"items"`
	Subtotal              decimal.Decimal     `json:"subtotal"`
	Discount              decimal.Decimal     `json:"discount"`
	ShippingFee           decimal.Decimal     `json:"shipping_fee"`
	Total                 decimal.Decimal     `json:"total"`
	CouponCode            string              `json:"coupon_code,omitempty"`
	FreeShippingThreshold decimal.Decimal     `json:"free_shipping_threshold"`
	AmountToFreeShipping  decimal.Decimal     `json:"amount_to_free_shipping"`
}

// OrderItemResponse is a line in an order
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url,omitempty"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                uuid.UUID           `json:"id"`
	OrderNumber       string              `json:"order_number"`
	UserID            uuid.UUID           `json:"user_id"`
	Items             []OrderItemResponse `json:"items"`
	ShippingAddress   valueobject.Address `json:"shipping_address"`
	PaymentMethod     string              `json:"payment_method"`
	PaymentStatus     string              `json:"payment_status"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	Discount          decimal.Decimal     `json:"discount"`
	ShippingFee       decimal.Decimal     `json:"shipping_fee"`
	Total             decimal.Decimal     `json:"total"`
	CouponCode        string              `json:"coupon_code,omitempty"`
	Status            string              `json:"status"`
	CancelReason      string              `json:"cancel_reason,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	RazorpayOrderID   string              `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string              `json:"razorpay_payment_id,omitempty"`
	RefundID          string              `json:"refund_id,omitempty"`
	RefundAmount      decimal.Decimal     `json:"refund_amount"`
	CanCancel         bool                `json:"can_cancel"`
	AwaitingPayment   bool                `json:"awaiting_payment"`
	PaidAt            *time.Time          `json:"paid_at,omitempty"`
	ProcessingAt      *time.Time          `json:"processing_at,omitempty"`
	ShippedAt         *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time          `json:"cancelled_at,omitempty"`
	RefundedAt        *time.Time          `json:"refunded_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Version           int                 `json:"version"`
}

// OrderListItemResponse is a compact order row
type OrderListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	UserID        uuid.UUID       `json:"user_id"`
	CustomerName  string          `json:"customer_name"`
	ItemCount     int             `json:"item_count"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	Status        string          `json:"status"`
	PrimaryImage  string          `json:"primary_image,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CreatePaymentResponse is what the checkout widget needs to open Razorpay
type CreatePaymentResponse struct {
	KeyID           string    `json:"key_id"`
	RazorpayOrderID string    `json:"razorpay_order_id"`
	Amount          int64     `json:"amount"`
	Currency        string    `json:"currency"`
	OrderID         uuid.UUID `json:"order_id"`
	OrderNumber     string    `json:"order_number"`
	ShopName        string    `json:"name"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"email"`
	CustomerPhone   string    `json:"contact,omitempty"`
}

// VerifyPaymentRequest is the checkout handler callback payload
type VerifyPaymentRequest struct {
	OrderID           uuid.UUID `json:"order_id" binding:"required"`
	RazorpayOrderID   string    `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string    `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string    `json:"razorpay_signature" binding:"required"`
}

// PaymentConfigResponse is the public payment configuration
type PaymentConfigResponse struct {
	KeyID                 string          `json:"key_id"`
	Currency              string          `json:"currency"`
	ShopName              string          `json:"shop_name"`
	CODEnabled            bool            `json:"cod_enabled"`
	ShippingFee           decimal.Decimal `json:"shipping_fee"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ImageURL:    it.ImageURL,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Amount:      it.Amount,
		}
	}
	return OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		UserID:            o.UserID,
		Items:             items,
		ShippingAddress:   o.ShippingAddress,
		PaymentMethod:     string(o.PaymentMethod),
		PaymentStatus:     string(o.PaymentStatus),
		Subtotal:          o.Subtotal,
		Discount:          o.Discount,
		ShippingFee:       o.ShippingFee,
		Total:             o.Total,
		CouponCode:        o.CouponCode,
		Status:            o.Status.String(),
		CancelReason:      o.CancelReason,
		Notes:             o.Notes,
		RazorpayOrderID:   o.RazorpayOrderID,
		RazorpayPaymentID: o.RazorpayPaymentID,
		RefundID:          o.RefundID,
		RefundAmount:      o.RefundAmount,
		CanCancel:         o.Status == trade.OrderStatusPending || o.Status == trade.OrderStatusProcessing,
		AwaitingPayment:   o.AwaitsOnlinePayment(),
		PaidAt:            o.PaidAt,
		ProcessingAt:      o.ProcessingAt,
		ShippedAt:         o.ShippedAt,
		DeliveredAt:       o.DeliveredAt,
		CancelledAt:       o.CancelledAt,
		RefundedAt:        o.RefundedAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

// ToOrderListItemResponse converts a domain Order to a list row
func ToOrderListItemResponse(o *trade.Order) OrderListItemResponse {
	image := ""
	if len(o.Items) > 0 {
		image = o.Items[0].ImageURL
	}
	return OrderListItemResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		CustomerName:  o.ShippingAddress.FullName,
		ItemCount:     o.ItemCount(),
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		Status:        o.Status.String(),
		PrimaryImage:  image,
		CreatedAt:     o.CreatedAt,
	}
}

// ToOrderListItemResponses converts a slice of domain Orders
func ToOrderListItemResponses(orders []*trade.Order) []OrderListItemResponse {
	out := make([]OrderListItemResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderListItemResponse(o)
	}
	return out
}
