package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// FindAll finds products matching the filter and returns the total count
	FindAll(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)

	// FindLowStock returns available products at or below the threshold
	FindLowStock(ctx context.Context, threshold, limit int) ([]*Product, error)

	// CountByCategory returns the number of available products per category
	CountByCategory(ctx context.Context) (map[Category]int64, error)

	// Count counts all products, optionally only available ones
	Count(ctx context.Context, onlyAvailable bool) (int64, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductFilter contains filter options for listing products
type ProductFilter struct {
	Search    string
	Category  Category
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Featured  *bool
	Available *bool
	InStock   bool

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewProductFilter creates a ProductFilter with default paging and sorting
func NewProductFilter() ProductFilter {
	return ProductFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// Offset returns the offset for pagination
func (f ProductFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size clamped to 1..100
func (f ProductFilter) Limit() int {
	if f.PageSize < 1 {
		return 20
	}
	if f.PageSize > 100 {
		return 100
	}
	return f.PageSize
}
