package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSubcategoryRepository implements catalog.SubcategoryRepository using GORM
type GormSubcategoryRepository struct {
	db *gorm.DB
}

// NewGormSubcategoryRepository creates a new GormSubcategoryRepository
func NewGormSubcategoryRepository(db *gorm.DB) *GormSubcategoryRepository {
	return &GormSubcategoryRepository{db: db}
}

// FindByID finds a subcategory by its ID
func (r *GormSubcategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Subcategory, error) {
	var subcategory catalog.Subcategory
	if err := r.db.WithContext(ctx).First(&subcategory, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &subcategory, nil
}

// FindAll finds all subcategories matching the filter
func (r *GormSubcategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Subcategory, error) {
	var subcategories []catalog.Subcategory
	query := r.db.WithContext(ctx).Model(&catalog.Subcategory{})

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", searchPattern, searchPattern)
	}
	if categoryID, ok := filter.Filters["category_id"]; ok {
		query = query.Where("category_id = ?", categoryID)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("sort_order ASC, name ASC")

	if err := query.Find(&subcategories).Error; err != nil {
		return nil, err
	}
	return subcategories, nil
}

// FindByCategory finds all subcategories under the given parent category
func (r *GormSubcategoryRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Subcategory, error) {
	var subcategories []catalog.Subcategory
	if err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("sort_order ASC, name ASC").
		Find(&subcategories).Error; err != nil {
		return nil, err
	}
	return subcategories, nil
}

// Save persists a subcategory
func (r *GormSubcategoryRepository) Save(ctx context.Context, subcategory *catalog.Subcategory) error {
	return r.db.WithContext(ctx).Save(subcategory).Error
}

// Delete removes a subcategory by ID
func (r *GormSubcategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Subcategory{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByCode checks if a subcategory with the given code exists
func (r *GormSubcategoryRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Subcategory{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormSubcategoryRepository implements SubcategoryRepository
var _ catalog.SubcategoryRepository = (*GormSubcategoryRepository)(nil)
