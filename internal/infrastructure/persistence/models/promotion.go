package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/promotion"
	"github.com/shopspring/decimal"
)

// CouponModel is the persistence model for the Coupon aggregate.
type CouponModel struct {
	AggregateModel
	Code           string                 `gorm:"type:varchar(32);not null;uniqueIndex"`
	Description    string                 `gorm:"type:varchar(200)"`
	DiscountType   promotion.DiscountType `gorm:"type:varchar(10);not null"`
	DiscountValue  decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	MaxDiscount    *decimal.Decimal       `gorm:"type:decimal(12,2)"`
	MinOrderAmount decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	MaxUses        int                    `gorm:"not null;default:0"`
	UsedCount      int                    `gorm:"not null;default:0"`
	ExpiresAt      *time.Time
	IsActive       bool                   `gorm:"not null"`
	OwnerID        *uuid.UUID             `gorm:"type:uuid;index"`
	Source         promotion.CouponSource `gorm:"type:varchar(10);not null;default:'admin'"`
}

// TableName returns the table name for GORM
func (CouponModel) TableName() string {
	return "coupons"
}

// ToDomain converts the persistence model to a domain Coupon.
func (m *CouponModel) ToDomain() *promotion.Coupon {
	return &promotion.Coupon{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Description:       m.Description,
		DiscountType:      m.DiscountType,
		DiscountValue:     m.DiscountValue,
		MaxDiscount:       m.MaxDiscount,
		MinOrderAmount:    m.MinOrderAmount,
		MaxUses:           m.MaxUses,
		UsedCount:         m.UsedCount,
		ExpiresAt:         m.ExpiresAt,
		IsActive:          m.IsActive,
		OwnerID:           m.OwnerID,
		Source:            m.Source,
	}
}

// FromDomain populates the persistence model from a domain Coupon.
func (m *CouponModel) FromDomain(c *promotion.Coupon) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Code = c.Code
	m.Description = c.Description
	m.DiscountType = c.DiscountType
	m.DiscountValue = c.DiscountValue
	m.MaxDiscount = c.MaxDiscount
	m.MinOrderAmount = c.MinOrderAmount
	m.MaxUses = c.MaxUses
	m.UsedCount = c.UsedCount
	m.ExpiresAt = c.ExpiresAt
	m.IsActive = c.IsActive
	m.OwnerID = c.OwnerID
	m.Source = c.Source
}

// CouponModelFromDomain creates a new persistence model from a domain Coupon.
func CouponModelFromDomain(c *promotion.Coupon) *CouponModel {
	m := &CouponModel{}
	m.FromDomain(c)
	return m
}
