package discount

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Change log action types
const (
	ActionRuleCreated     = "rule_created"
	ActionRuleDeactivated = "rule_deactivated"
	ActionRuleApplied     = "rule_applied"
	ActionRecomputed      = "discounts_recomputed"
	ActionFilteredApply   = "filtered_apply"
)

// Change log entity types
const (
	EntityTypeRule    = "discount_rule"
	EntityTypeProduct = "product"
)

// ChangeLogEntry records one administrative action against the discount
// engine. Entries are append-only and never mutated after insert.
type ChangeLogEntry struct {
	shared.BaseEntity
	EntityType string         `gorm:"type:varchar(50);not null;index"`
	EntityID   *uuid.UUID     `gorm:"type:uuid;index"`
	ActionType string         `gorm:"type:varchar(50);not null;index"`
	Details    map[string]any `gorm:"type:jsonb;serializer:json"`
	ActorID    *uuid.UUID     `gorm:"type:uuid"`
	OccurredAt time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ChangeLogEntry) TableName() string {
	return "discount_change_log"
}

// NewChangeLogEntry creates an entry for the given action
func NewChangeLogEntry(entityType, actionType string, details map[string]any) *ChangeLogEntry {
	return &ChangeLogEntry{
		BaseEntity: shared.NewBaseEntity(),
		EntityType: entityType,
		ActionType: actionType,
		Details:    details,
		OccurredAt: time.Now(),
	}
}

// WithEntityID attaches the affected entity's id
func (e *ChangeLogEntry) WithEntityID(id uuid.UUID) *ChangeLogEntry {
	e.EntityID = &id
	return e
}

// WithActor attaches the acting operator's id
func (e *ChangeLogEntry) WithActor(id uuid.UUID) *ChangeLogEntry {
	e.ActorID = &id
	return e
}
