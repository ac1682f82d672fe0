package persistence

import (
	"context"

	"github.com/storefront/backend/internal/domain/discount"
	"gorm.io/gorm"
)

// GormChangeLogRepository implements discount.ChangeLogRepository using GORM
type GormChangeLogRepository struct {
	db *gorm.DB
}

// NewGormChangeLogRepository creates a new GormChangeLogRepository
func NewGormChangeLogRepository(db *gorm.DB) *GormChangeLogRepository {
	return &GormChangeLogRepository{db: db}
}

// Append persists a change log entry
func (r *GormChangeLogRepository) Append(ctx context.Context, entry *discount.ChangeLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Find returns entries newest first, capped at MaxChangeLogResults
func (r *GormChangeLogRepository) Find(ctx context.Context, filter discount.ChangeLogFilter) ([]discount.ChangeLogEntry, error) {
	query := r.db.WithContext(ctx).Model(&discount.ChangeLogEntry{})

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.ActionType != "" {
		query = query.Where("action_type LIKE ?", "%"+filter.ActionType+"%")
	}

	limit := filter.Limit
	if limit <= 0 || limit > discount.MaxChangeLogResults {
		limit = discount.MaxChangeLogResults
	}

	var entries []discount.ChangeLogEntry
	if err := query.
		Order("occurred_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormChangeLogRepository implements ChangeLogRepository
var _ discount.ChangeLogRepository = (*GormChangeLogRepository)(nil)
