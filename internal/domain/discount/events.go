package discount

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeRule = "DiscountRule"
)

// Event type constants
const (
	EventTypeRuleCreated     = "DiscountRuleCreated"
	EventTypeRuleDeactivated = "DiscountRuleDeactivated"
	// EventTypePricingChanged tells connected sessions that effective
	// product pricing may have changed and should be refetched.
	EventTypePricingChanged = "PricingChanged"
)

// RuleCreatedEvent is published when a new discount rule is created
type RuleCreatedEvent struct {
	shared.BaseDomainEvent
	RuleID     uuid.UUID  `json:"rule_id"`
	Scope      RuleScope  `json:"scope"`
	TargetID   *uuid.UUID `json:"target_id,omitempty"`
	Percentage int        `json:"percentage"`
}

// NewRuleCreatedEvent creates a new RuleCreatedEvent
func NewRuleCreatedEvent(rule *Rule) *RuleCreatedEvent {
	return &RuleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRuleCreated, AggregateTypeRule, rule.ID),
		RuleID:          rule.ID,
		Scope:           rule.Scope,
		TargetID:        rule.TargetID,
		Percentage:      rule.Percentage,
	}
}

// RuleDeactivatedEvent is published when a discount rule is withdrawn
type RuleDeactivatedEvent struct {
	shared.BaseDomainEvent
	RuleID     uuid.UUID  `json:"rule_id"`
	Scope      RuleScope  `json:"scope"`
	TargetID   *uuid.UUID `json:"target_id,omitempty"`
	Percentage int        `json:"percentage"`
}

// NewRuleDeactivatedEvent creates a new RuleDeactivatedEvent
func NewRuleDeactivatedEvent(rule *Rule) *RuleDeactivatedEvent {
	return &RuleDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRuleDeactivated, AggregateTypeRule, rule.ID),
		RuleID:          rule.ID,
		Scope:           rule.Scope,
		TargetID:        rule.TargetID,
		Percentage:      rule.Percentage,
	}
}

// PricingChangedEvent signals that a recomputation (or a filtered apply)
// rewrote effective discounts. Subscribers treat it as an invalidation
// hint, never as authoritative state: a fresh reload must always reflect
// true state independent of delivery.
type PricingChangedEvent struct {
	shared.BaseDomainEvent
	RuleID        uuid.UUID `json:"rule_id"`
	AffectedCount int64     `json:"affected_count"`
}

// NewPricingChangedEvent creates a new PricingChangedEvent
func NewPricingChangedEvent(ruleID uuid.UUID, affected int64) *PricingChangedEvent {
	return &PricingChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePricingChanged, AggregateTypeRule, ruleID),
		RuleID:          ruleID,
		AffectedCount:   affected,
	}
}
