package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/contact"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContactRepository implements contact.Repository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Create stores a new message
func (r *GormContactRepository) Create(ctx context.Context, m *contact.Message) error {
	var model models.ContactMessageModel
	model.FromDomain(m)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("create contact message: %w", err)
	}
	return nil
}

// Update saves status and reply changes
func (r *GormContactRepository) Update(ctx context.Context, m *contact.Message) error {
	result := r.db.WithContext(ctx).Model(&models.ContactMessageModel{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"status":     m.Status,
			"reply":      m.Reply,
			"replied_at": m.RepliedAt,
			"replied_by": m.RepliedBy,
			"updated_at": m.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update contact message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a message
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*contact.Message, error) {
	var model models.ContactMessageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists the inbox, newest first
func (r *GormContactRepository) FindAll(ctx context.Context, filter contact.Filter) ([]*contact.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContactMessageModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(subject) LIKE ? ESCAPE '\')`, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ContactMessageModel
	if err := query.Order("created_at DESC").Offset(filter.Offset()).Limit(filter.Limit()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*contact.Message, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// CountByStatus counts messages in one status
func (r *GormContactRepository) CountByStatus(ctx context.Context, status contact.Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContactMessageModel{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Delete removes a message
func (r *GormContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ContactMessageModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
