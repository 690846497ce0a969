package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
	"github.com/seafresh/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber       string              `gorm:"type:varchar(30);not null;uniqueIndex"`
	UserID            uuid.UUID           `gorm:"type:uuid;not null;index"`
	Items             []OrderItemModel    `gorm:"foreignKey:OrderID;references:ID"`
	ShippingAddress   valueobject.Address `gorm:"type:jsonb;serializer:json;not null"`
	PaymentMethod     trade.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaymentStatus     trade.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	Subtotal          decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Discount          decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	ShippingFee       decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	Total             decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	CouponID          *uuid.UUID          `gorm:"type:uuid"`
	CouponCode        string              `gorm:"type:varchar(32)"`
	Status            trade.OrderStatus   `gorm:"type:varchar(20);not null;index"`
	CancelReason      string              `gorm:"type:varchar(500)"`
	Notes             string              `gorm:"type:varchar(500)"`
	RazorpayOrderID   *string             `gorm:"type:varchar(40);uniqueIndex"`
	RazorpayPaymentID *string             `gorm:"type:varchar(40);uniqueIndex"`
	RefundID          string              `gorm:"type:varchar(40)"`
	RefundAmount      decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	PaidAt            *time.Time          `gorm:"index"`
	ProcessingAt      *time.Time
	ShippedAt         *time.Time
	DeliveredAt       *time.Time
	CancelledAt       *time.Time
	RefundedAt        *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		UserID:            m.UserID,
		ShippingAddress:   m.ShippingAddress,
		PaymentMethod:     m.PaymentMethod,
		PaymentStatus:     m.PaymentStatus,
		Subtotal:          m.Subtotal,
		Discount:          m.Discount,
		ShippingFee:       m.ShippingFee,
		Total:             m.Total,
		CouponID:          m.CouponID,
		CouponCode:        m.CouponCode,
		Status:            m.Status,
		CancelReason:      m.CancelReason,
		Notes:             m.Notes,
		RefundID:          m.RefundID,
		RefundAmount:      m.RefundAmount,
		PaidAt:            m.PaidAt,
		ProcessingAt:      m.ProcessingAt,
		ShippedAt:         m.ShippedAt,
		DeliveredAt:       m.DeliveredAt,
		CancelledAt:       m.CancelledAt,
		RefundedAt:        m.RefundedAt,
		Items:             make([]trade.OrderItem, len(m.Items)),
	}
	if m.RazorpayOrderID != nil {
		o.RazorpayOrderID = *m.RazorpayOrderID
	}
	if m.RazorpayPaymentID != nil {
		o.RazorpayPaymentID = *m.RazorpayPaymentID
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.UserID = o.UserID
	m.ShippingAddress = o.ShippingAddress
	m.PaymentMethod = o.PaymentMethod
	m.PaymentStatus = o.PaymentStatus
	m.Subtotal = o.Subtotal
	m.Discount = o.Discount
	m.ShippingFee = o.ShippingFee
	m.Total = o.Total
	m.CouponID = o.CouponID
	m.CouponCode = o.CouponCode
	m.Status = o.Status
	m.CancelReason = o.CancelReason
	m.Notes = o.Notes
	m.RazorpayOrderID = nullable(o.RazorpayOrderID)
	m.RazorpayPaymentID = nullable(o.RazorpayPaymentID)
	m.RefundID = o.RefundID
	m.RefundAmount = o.RefundAmount
	m.PaidAt = o.PaidAt
	m.ProcessingAt = o.ProcessingAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.RefundedAt = o.RefundedAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is a line of an order. Product name, image and price are
// snapshots taken when the order was placed.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ImageURL    string          `gorm:"type:varchar(500)"`
	Unit        string          `gorm:"type:varchar(20);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		ImageURL:    m.ImageURL,
		Unit:        m.Unit,
		UnitPrice:   m.UnitPrice,
		Quantity:    m.Quantity,
		Amount:      m.Amount,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderItem.
func (m *OrderItemModel) FromDomain(i *trade.OrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.ImageURL = i.ImageURL
	m.Unit = i.Unit
	m.UnitPrice = i.UnitPrice
	m.Quantity = i.Quantity
	m.Amount = i.Amount
	m.CreatedAt = i.CreatedAt
}

// OrderSequenceModel holds the last order number issued per calendar day
type OrderSequenceModel struct {
	Day  string `gorm:"type:varchar(8);primaryKey"`
	Last int    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderSequenceModel) TableName() string {
	return "order_sequences"
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
