package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Category groups products on the storefront
type Category string

const (
	CategoryFish        Category = "fish"
	CategoryPrawns      Category = "prawns"
	CategoryCrabs       Category = "crabs"
	CategoryShellfish   Category = "shellfish"
	CategoryDried       Category = "dried"
	CategoryReadyToCook Category = "ready-to-cook"
	CategoryOther       Category = "other"
)

// AllCategories lists the categories in display order
func AllCategories() []Category {
	return []Category{
		CategoryFish, CategoryPrawns, CategoryCrabs, CategoryShellfish,
		CategoryDried, CategoryReadyToCook, CategoryOther,
	}
}

// IsValid returns true if the category is known
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Freshness describes how the product is stored and shipped
type Freshness string

const (
	FreshnessFresh  Freshness = "fresh"
	FreshnessFrozen Freshness = "frozen"
	FreshnessDried  Freshness = "dried"
)

// IsValid returns true if the freshness value is known
func (f Freshness) IsValid() bool {
	switch f {
	case FreshnessFresh, FreshnessFrozen, FreshnessDried:
		return true
	}
	return false
}

const (
	maxImages        = 8
	maxNameLength    = 200
	maxUnitLength    = 20
	maxOriginLength  = 100
	maxImageURLBytes = 500
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Product is a sellable catalog item
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	Name          string
	Slug          string
	Description   string
	Category      Category
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Unit          string
	Stock         int
	Images        []string
	IsAvailable   bool
	IsFeatured    bool
	Origin        string
	Freshness     Freshness
}

// NewProduct creates a new product that is available for sale
func NewProduct(name string, category Category, price decimal.Decimal, unit string) (*Product, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown product category")
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              Slugify(name),
		Category:          category,
		Price:             price,
		Unit:              unit,
		Images:            make([]string, 0),
		IsAvailable:       true,
		Freshness:         FreshnessFresh,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's descriptive fields
func (p *Product) Update(name, description string, category Category, origin string, freshness Freshness) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown product category")
	}
	if freshness != "" && !freshness.IsValid() {
		return shared.NewDomainError("INVALID_FRESHNESS", "Freshness must be fresh, frozen or dried")
	}
	if len(origin) > maxOriginLength {
		return shared.NewDomainError("INVALID_ORIGIN", "Origin cannot exceed 100 characters")
	}

	p.Name = name
	p.Slug = Slugify(name)
	p.Description = strings.TrimSpace(description)
	p.Category = category
	p.Origin = strings.TrimSpace(origin)
	if freshness != "" {
		p.Freshness = freshness
	}
	p.Touch()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetPricing sets the list price and an optional discounted price
func (p *Product) SetPricing(price decimal.Decimal, discountPrice *decimal.Decimal, unit string) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	unit = strings.TrimSpace(unit)
	if err := validateUnit(unit); err != nil {
		return err
	}
	if discountPrice != nil {
		if discountPrice.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_DISCOUNT_PRICE", "Discount price must be positive")
		}
		if discountPrice.GreaterThanOrEqual(price) {
			return shared.NewDomainError("INVALID_DISCOUNT_PRICE", "Discount price must be lower than the price")
		}
	}

	oldPrice := p.EffectivePrice()
	p.Price = price
	p.DiscountPrice = discountPrice
	p.Unit = unit
	p.Touch()

	if !oldPrice.Equal(p.EffectivePrice()) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))
	}

	return nil
}

// EffectivePrice is the price charged at checkout
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// HasDiscount returns true if a discounted price applies
func (p *Product) HasDiscount() bool {
	return p.DiscountPrice != nil
}

// SetStock replaces the on-hand stock count
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	old := p.Stock
	p.Stock = stock
	p.Touch()

	if old != stock {
		p.AddDomainEvent(NewProductStockChangedEvent(p, old))
	}

	return nil
}

// SetImages replaces the product image URLs
func (p *Product) SetImages(images []string) error {
	if len(images) > maxImages {
		return shared.NewDomainError("TOO_MANY_IMAGES", "A product can have at most 8 images")
	}
	cleaned := make([]string, 0, len(images))
	for _, img := range images {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		if len(img) > maxImageURLBytes {
			return shared.NewDomainError("INVALID_IMAGE", "Image URL cannot exceed 500 characters")
		}
		cleaned = append(cleaned, img)
	}

	p.Images = cleaned
	p.Touch()

	return nil
}

// SetAvailability toggles whether the product can be ordered
func (p *Product) SetAvailability(available bool) {
	if p.IsAvailable == available {
		return
	}
	p.IsAvailable = available
	p.Touch()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// SetFeatured toggles whether the product is shown on the home page
func (p *Product) SetFeatured(featured bool) {
	p.IsFeatured = featured
	p.Touch()
}

// CanOrder checks whether quantity units can be ordered right now
func (p *Product) CanOrder(quantity int) error {
	if !p.IsAvailable {
		return shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product "+p.Name+" is not available")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Stock < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Only "+strconv.Itoa(p.Stock)+" left of "+p.Name)
	}
	return nil
}

// IsLowStock returns true if stock is at or below the threshold
func (p *Product) IsLowStock(threshold int) bool {
	return p.Stock <= threshold
}

// PrimaryImage returns the first image URL, if any
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// MarkDeleted records a deletion event before the repository removes the row
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
	p.UpdatedAt = time.Now()
}

// Slugify turns a product name into a URL fragment
func Slugify(name string) string {
	s := slugInvalidChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > maxNameLength {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Price must be positive")
	}
	return nil
}

func validateUnit(unit string) error {
	if unit == "" {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if len(unit) > maxUnitLength {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	return nil
}
