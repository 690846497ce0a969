package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/catalog"
	"github.com/seafresh/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, catalog.Category(req.Category), req.Price, req.Unit)
	if err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, req.Description, product.Category, req.Origin, catalog.Freshness(req.Freshness)); err != nil {
		return nil, err
	}
	if req.DiscountPrice != nil {
		if err := product.SetPricing(req.Price, req.DiscountPrice, req.Unit); err != nil {
			return nil, err
		}
	}
	if err := product.SetStock(req.Stock); err != nil {
		return nil, err
	}
	if err := product.SetImages(req.Images); err != nil {
		return nil, err
	}
	if req.IsAvailable != nil {
		product.SetAvailability(*req.IsAvailable)
	}
	product.SetFeatured(req.IsFeatured)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetVisible retrieves a product for the storefront. Unavailable products are
// hidden from customers.
func (s *ProductService) GetVisible(ctx context.Context, id uuid.UUID, includeHidden bool) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable && !includeHidden {
		return nil, shared.ErrNotFound
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a paginated list of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	f := catalog.NewProductFilter()
	f.Search = strings.TrimSpace(filter.Search)
	if filter.Category != "" {
		c := catalog.Category(filter.Category)
		if !c.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_CATEGORY", "Unknown product category")
		}
		f.Category = c
	}
	f.MinPrice = filter.MinPrice
	f.MaxPrice = filter.MaxPrice
	f.Featured = filter.Featured
	f.Available = filter.Available
	f.InStock = filter.InStock
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.SortBy != "" {
		f.SortBy = filter.SortBy
	}
	if filter.SortOrder != "" {
		f.SortOrder = filter.SortOrder
	}

	products, total, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Categories lists every category with its number of available products
func (s *ProductService) Categories(ctx context.Context) ([]CategoryResponse, error) {
	counts, err := s.productRepo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	caser := cases.Title(language.English)
	out := make([]CategoryResponse, 0, len(catalog.AllCategories()))
	for _, c := range catalog.AllCategories() {
		out = append(out, CategoryResponse{
			Slug:  string(c),
			Name:  caser.String(strings.ReplaceAll(string(c), "-", " ")),
			Count: counts[c],
		})
	}
	return out, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := product.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := product.Description
	if req.Description != nil {
		description = *req.Description
	}
	category := product.Category
	if req.Category != nil {
		category = catalog.Category(*req.Category)
	}
	origin := product.Origin
	if req.Origin != nil {
		origin = *req.Origin
	}
	var freshness catalog.Freshness
	if req.Freshness != nil {
		freshness = catalog.Freshness(*req.Freshness)
	}
	if err := product.Update(name, description, category, origin, freshness); err != nil {
		return nil, err
	}

	if req.Price != nil || req.DiscountPrice != nil || req.ClearDiscount || req.Unit != nil {
		price := product.Price
		if req.Price != nil {
			price = *req.Price
		}
		discount := product.DiscountPrice
		if req.DiscountPrice != nil {
			discount = req.DiscountPrice
		}
		if req.ClearDiscount {
			discount = nil
		}
		unit := product.Unit
		if req.Unit != nil {
			unit = *req.Unit
		}
		if err := product.SetPricing(price, discount, unit); err != nil {
			return nil, err
		}
	}

	if req.Images != nil {
		if err := product.SetImages(req.Images); err != nil {
			return nil, err
		}
	}
	if req.IsAvailable != nil {
		product.SetAvailability(*req.IsAvailable)
	}
	if req.IsFeatured != nil {
		product.SetFeatured(*req.IsFeatured)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// UpdateStock sets the on-hand stock
func (s *ProductService) UpdateStock(ctx context.Context, id uuid.UUID, req UpdateStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Stock == nil {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock is required")
	}
	if err := product.SetStock(*req.Stock); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// UpdateAvailability toggles availability and the featured flag
func (s *ProductService) UpdateAvailability(ctx context.Context, id uuid.UUID, req UpdateAvailabilityRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IsAvailable != nil {
		product.SetAvailability(*req.IsAvailable)
	}
	if req.IsFeatured != nil {
		product.SetFeatured(*req.IsFeatured)
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete deletes a product. Past orders keep their own copy of the name and price.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	product.MarkDeleted()
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, product)
	return nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, product); err != nil {
		s.logger.Warn("failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
}
