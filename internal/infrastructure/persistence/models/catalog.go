package models

import (
	"github.com/seafresh/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate.
type ProductModel struct {
	AggregateModel
	Name          string            `gorm:"type:varchar(200);not null"`
	Slug          string            `gorm:"type:varchar(220);not null;uniqueIndex"`
	Description   string            `gorm:"type:text"`
	Category      catalog.Category  `gorm:"type:varchar(30);not null;index"`
	Price         decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	DiscountPrice *decimal.Decimal  `gorm:"type:decimal(12,2)"`
	Unit          string            `gorm:"type:varchar(20);not null"`
	Stock         int               `gorm:"not null;default:0"`
	Images        []string          `gorm:"type:jsonb;serializer:json"`
	IsAvailable   bool              `gorm:"not null;index"`
	IsFeatured    bool              `gorm:"not null;default:false"`
	Origin        string            `gorm:"type:varchar(100)"`
	Freshness     catalog.Freshness `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	images := m.Images
	if images == nil {
		images = []string{}
	}
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		Category:          m.Category,
		Price:             m.Price,
		DiscountPrice:     m.DiscountPrice,
		Unit:              m.Unit,
		Stock:             m.Stock,
		Images:            images,
		IsAvailable:       m.IsAvailable,
		IsFeatured:        m.IsFeatured,
		Origin:            m.Origin,
		Freshness:         m.Freshness,
	}
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.Category = p.Category
	m.Price = p.Price
	m.DiscountPrice = p.DiscountPrice
	m.Unit = p.Unit
	m.Stock = p.Stock
	m.Images = p.Images
	m.IsAvailable = p.IsAvailable
	m.IsFeatured = p.IsFeatured
	m.Origin = p.Origin
	m.Freshness = p.Freshness
}

// ProductModelFromDomain creates a new persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
