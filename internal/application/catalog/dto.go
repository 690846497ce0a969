package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Description   string           `json:"description" binding:"max=5000"`
	Category      string           `json:"category" binding:"required"`
	Price         decimal.Decimal  `json:"price" binding:"required"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Unit          string           `json:"unit" binding:"required,min=1,max=20"`
	Stock         int              `json:"stock" binding:"min=0"`
	Images        []string         `json:"images" binding:"max=8,dive,url"`
	IsAvailable   *bool            `json:"is_available"`
	IsFeatured    bool             `json:"is_featured"`
	Origin        string           `json:"origin" binding:"max=100"`
	Freshness     string           `json:"freshness" binding:"omitempty,oneof=fresh frozen dried"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=5000"`
	Category      *string          `json:"category"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	ClearDiscount bool             `json:"clear_discount"`
	Unit          *string          `json:"unit" binding:"omitempty,min=1,max=20"`
	Images        []string         `json:"images" binding:"omitempty,max=8,dive,url"`
	IsAvailable   *bool            `json:"is_available"`
	IsFeatured    *bool            `json:"is_featured"`
	Origin        *string          `json:"origin" binding:"omitempty,max=100"`
	Freshness     *string          `json:"freshness" binding:"omitempty,oneof=fresh frozen dried"`
}

// UpdateStockRequest sets the stock count
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}

// UpdateAvailabilityRequest toggles ordering for a product
type UpdateAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
	IsFeatured  *bool `json:"is_featured"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search    string           `form:"search"`
	Category  string           `form:"category"`
	MinPrice  *decimal.Decimal `form:"min_price"`
	MaxPrice  *decimal.Decimal `form:"max_price"`
	Featured  *bool            `form:"featured"`
	Available *bool            `form:"available"`
	InStock   bool             `form:"in_stock"`
	Page      int              `form:"page" binding:"omitempty,min=1"`
	PageSize  int              `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string           `form:"sort_by" binding:"omitempty,oneof=created_at price name stock"`
	SortOrder string           `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Price          decimal.Decimal  `json:"price"`
	DiscountPrice  *decimal.Decimal `json:"discount_price,omitempty"`
	EffectivePrice decimal.Decimal  `json:"effective_price"`
	Unit           string           `json:"unit"`
	Stock          int              `json:"stock"`
	InStock        bool             `json:"in_stock"`
	Images         []string         `json:"images"`
	IsAvailable    bool             `json:"is_available"`
	IsFeatured     bool             `json:"is_featured"`
	Origin         string           `json:"origin,omitempty"`
	Freshness      string           `json:"freshness"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Version        int              `json:"version"`
}

// CategoryResponse is a category with the number of products listed under it
type CategoryResponse struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// UploadResponse describes a stored image
type UploadResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// PresignRequest asks for a direct browser upload URL
type PresignRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp"`
}

// PresignResponse is a presigned PUT URL and the key it writes to
type PresignResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Category:       string(p.Category),
		Price:          p.Price,
		DiscountPrice:  p.DiscountPrice,
		EffectivePrice: p.EffectivePrice(),
		Unit:           p.Unit,
		Stock:          p.Stock,
		InStock:        p.Stock > 0,
		Images:         images,
		IsAvailable:    p.IsAvailable,
		IsFeatured:     p.IsFeatured,
		Origin:         p.Origin,
		Freshness:      string(p.Freshness),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []*catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
