package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Subcategory represents a second-level product grouping under a category
type Subcategory struct {
	shared.BaseAggregateRoot
	CategoryID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	Code        string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string         `gorm:"type:varchar(100);not null"`
	Description string         `gorm:"type:text"`
	SortOrder   int            `gorm:"not null;default:0"`
	Status      CategoryStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Subcategory) TableName() string {
	return "subcategories"
}

// NewSubcategory creates a new subcategory under the given parent category
func NewSubcategory(parent *Category, code, name string) (*Subcategory, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent category is required")
	}
	if err := validateCategoryCode(code); err != nil {
		return nil, err
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	return &Subcategory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CategoryID:        parent.ID,
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            CategoryStatusActive,
	}, nil
}

// Update updates the subcategory's basic information
func (s *Subcategory) Update(name, description string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}

	s.Name = name
	s.Description = description
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Activate activates the subcategory
func (s *Subcategory) Activate() error {
	if s.Status == CategoryStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Subcategory is already active")
	}

	s.Status = CategoryStatusActive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Deactivate deactivates the subcategory
func (s *Subcategory) Deactivate() error {
	if s.Status == CategoryStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Subcategory is already inactive")
	}

	s.Status = CategoryStatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// IsActive returns true if the subcategory is active
func (s *Subcategory) IsActive() bool {
	return s.Status == CategoryStatusActive
}
