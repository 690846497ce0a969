package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/catalog"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindAll finds products matching the filter and returns the total count
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]*catalog.Product, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := query.
		Order(orderClause(filter.SortBy, filter.SortOrder, ProductSortFields, "created_at")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toProducts(rows), total, nil
}

// FindLowStock returns available products at or below the threshold, lowest stock first
func (r *GormProductRepository) FindLowStock(ctx context.Context, threshold, limit int) ([]*catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("is_available = ? AND stock <= ?", true, threshold).
		Order("stock ASC, name ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// CountByCategory returns the number of available products per category
func (r *GormProductRepository) CountByCategory(ctx context.Context) (map[catalog.Category]int64, error) {
	var rows []struct {
		Category catalog.Category
		Count    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select("category, COUNT(*) AS count").
		Where("is_available = ?", true).
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[catalog.Category]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// Count counts all products, optionally only available ones
func (r *GormProductRepository) Count(ctx context.Context, onlyAvailable bool) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if onlyAvailable {
		query = query.Where("is_available = ?", true)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	if err := r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error; err != nil {
		if errors.Is(translate(err), shared.ErrAlreadyExists) {
			return shared.NewDomainError("SLUG_TAKEN", "A product with this name already exists")
		}
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const effectivePrice = "CAST(COALESCE(discount_price, price) AS NUMERIC)"

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(origin) LIKE ? ESCAPE '\')`, pattern, pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	// decimals bind as text; both sides are cast so SQLite compares numbers
	if filter.MinPrice != nil {
		query = query.Where(effectivePrice+" >= CAST(? AS NUMERIC)", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		query = query.Where(effectivePrice+" <= CAST(? AS NUMERIC)", filter.MaxPrice.String())
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Available != nil {
		query = query.Where("is_available = ?", *filter.Available)
	}
	if filter.InStock {
		query = query.Where("stock > 0")
	}
	return query
}

func toProducts(rows []models.ProductModel) []*catalog.Product {
	out := make([]*catalog.Product, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
