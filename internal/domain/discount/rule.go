package discount

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// RuleScope is the breadth of a discount rule's targeting
type RuleScope string

const (
	ScopeAllProducts RuleScope = "all_products"
	ScopeCategory    RuleScope = "category"
	ScopeSubcategory RuleScope = "subcategory"
)

// IsValid returns true for a known scope value
func (s RuleScope) IsValid() bool {
	switch s {
	case ScopeAllProducts, ScopeCategory, ScopeSubcategory:
		return true
	}
	return false
}

// Rule represents a percentage discount scoped to all products, one
// category, or one subcategory.
//
// Rules are never hard-deleted; removal sets Active to false so the audit
// trail stays replayable. A product's effective discount is derived by
// replaying the active rules in creation order; the most recently created
// rule wins on overlap, regardless of scope specificity.
type Rule struct {
	shared.AuditedAggregateRoot
	Scope      RuleScope  `gorm:"type:varchar(20);not null"`
	TargetID   *uuid.UUID `gorm:"type:uuid;index"`
	Percentage int        `gorm:"not null"`
	Active     bool       `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (Rule) TableName() string {
	return "discount_rules"
}

// NewRule creates a new discount rule.
// TargetID must be nil for the all-products scope and set for the
// category/subcategory scopes; percentage must be within [0,100].
func NewRule(scope RuleScope, targetID *uuid.UUID, percentage int, createdBy *uuid.UUID) (*Rule, error) {
	if !scope.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown rule scope")
	}
	if percentage < 0 || percentage > 100 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Percentage must be between 0 and 100")
	}
	if scope == ScopeAllProducts && targetID != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Target must be empty for the all-products scope")
	}
	if scope != ScopeAllProducts && targetID == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Target is required for category and subcategory scopes")
	}

	rule := &Rule{
		AuditedAggregateRoot: shared.AuditedAggregateRoot{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			CreatedBy:         createdBy,
		},
		Scope:      scope,
		TargetID:   targetID,
		Percentage: percentage,
		Active:     true,
	}

	rule.AddDomainEvent(NewRuleCreatedEvent(rule))

	return rule, nil
}

// Deactivate withdraws the rule from the active set.
// An already-inactive rule is reported as not found, matching the lookup
// semantics of the active rule set.
func (r *Rule) Deactivate() error {
	if !r.Active {
		return shared.ErrNotFound
	}

	r.Active = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewRuleDeactivatedEvent(r))

	return nil
}

// IsActive returns true if the rule participates in recomputation
func (r *Rule) IsActive() bool {
	return r.Active
}

// Snapshot returns a copy of the rule without pending domain events,
// suitable for returning prior state from a mutating operation.
func (r *Rule) Snapshot() Rule {
	copied := *r
	copied.ClearDomainEvents()
	return copied
}
