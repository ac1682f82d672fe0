package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ruleSetVersion is the single-row counter bumped on every structural
// change to the active rule set
type ruleSetVersion struct {
	ID      int   `gorm:"primaryKey"`
	Version int64 `gorm:"not null;default:0"`
}

func (ruleSetVersion) TableName() string {
	return "discount_rule_set_version"
}

// GormRuleRepository implements discount.RuleRepository using GORM
type GormRuleRepository struct {
	db *gorm.DB
}

// NewGormRuleRepository creates a new GormRuleRepository
func NewGormRuleRepository(db *gorm.DB) *GormRuleRepository {
	return &GormRuleRepository{db: db}
}

// Create inserts the rule and bumps the rule-set version in one transaction
func (r *GormRuleRepository) Create(ctx context.Context, rule *discount.Rule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rule).Error; err != nil {
			return err
		}
		return bumpRuleSetVersion(tx)
	})
}

// FindByID finds a rule by its ID regardless of its active flag
func (r *GormRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*discount.Rule, error) {
	var rule discount.Rule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// ListActive returns all active rules in ascending creation order
func (r *GormRuleRepository) ListActive(ctx context.Context) ([]discount.Rule, error) {
	var rules []discount.Rule
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// Deactivate flips the rule's active flag and bumps the rule-set version
// in one transaction, returning the prior snapshot
func (r *GormRuleRepository) Deactivate(ctx context.Context, id uuid.UUID) (*discount.Rule, error) {
	var prior discount.Rule

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rule discount.Rule
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rule, "id = ? AND active = ?", id, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		prior = rule.Snapshot()

		if err := tx.Model(&discount.Rule{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"active":     false,
				"updated_at": time.Now(),
				"version":    gorm.Expr("version + 1"),
			}).Error; err != nil {
			return err
		}

		return bumpRuleSetVersion(tx)
	})
	if err != nil {
		return nil, err
	}

	return &prior, nil
}

// Version returns the current rule-set version counter
func (r *GormRuleRepository) Version(ctx context.Context) (int64, error) {
	var row ruleSetVersion
	if err := r.db.WithContext(ctx).First(&row, "id = ?", 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Version, nil
}

// bumpRuleSetVersion increments the single counter row, creating it on
// first use
func bumpRuleSetVersion(tx *gorm.DB) error {
	result := tx.Model(&ruleSetVersion{}).
		Where("id = ?", 1).
		Update("version", gorm.Expr("version + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tx.Create(&ruleSetVersion{ID: 1, Version: 1}).Error
	}
	return nil
}

// Ensure GormRuleRepository implements RuleRepository
var _ discount.RuleRepository = (*GormRuleRepository)(nil)
