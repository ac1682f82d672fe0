package discount

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/discount"
)

// CreateRuleRequest represents a request to create a discount rule
type CreateRuleRequest struct {
	Scope      string     `json:"scope" binding:"required,oneof=all_products category subcategory"`
	TargetID   *uuid.UUID `json:"target_id"`
	Percentage int        `json:"percentage" binding:"min=0,max=100"`
	Actor      *uuid.UUID `json:"-"`
}

// ApplyFilteredRequest represents a request to create a rule narrowed by an
// ad-hoc condition list
type ApplyFilteredRequest struct {
	Scope      string               `json:"scope" binding:"required,oneof=all_products category subcategory"`
	TargetID   *uuid.UUID           `json:"target_id"`
	Percentage int                  `json:"percentage" binding:"min=0,max=100"`
	Conditions []discount.Condition `json:"conditions"`
	Actor      *uuid.UUID           `json:"-"`
}

// PreviewRequest represents a request to render a condition list
type PreviewRequest struct {
	Conditions []discount.Condition `json:"conditions"`
}

// PreviewResponse carries the human-readable rendering of a condition list
type PreviewResponse struct {
	Preview string `json:"preview"`
}

// RuleResponse represents a discount rule in API responses
type RuleResponse struct {
	ID         uuid.UUID  `json:"id"`
	Scope      string     `json:"scope"`
	TargetID   *uuid.UUID `json:"target_id,omitempty"`
	Percentage int        `json:"percentage"`
	Active     bool       `json:"active"`
	CreatedBy  *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Version    int        `json:"version"`
}

// ToRuleResponse converts a domain rule to a response DTO
func ToRuleResponse(rule *discount.Rule) RuleResponse {
	return RuleResponse{
		ID:         rule.ID,
		Scope:      string(rule.Scope),
		TargetID:   rule.TargetID,
		Percentage: rule.Percentage,
		Active:     rule.Active,
		CreatedBy:  rule.GetCreatedBy(),
		CreatedAt:  rule.CreatedAt,
		UpdatedAt:  rule.UpdatedAt,
		Version:    rule.GetVersion(),
	}
}

// ToRuleResponses converts a rule slice to response DTOs
func ToRuleResponses(rules []discount.Rule) []RuleResponse {
	responses := make([]RuleResponse, len(rules))
	for i := range rules {
		responses[i] = ToRuleResponse(&rules[i])
	}
	return responses
}

// RuleApplication is the per-rule outcome of a recomputation. A failed
// application reports zero affected rows regardless of how far the write
// got before failing.
type RuleApplication struct {
	RuleID        uuid.UUID `json:"rule_id"`
	Percentage    int       `json:"percentage"`
	AffectedCount int64     `json:"affected_count"`
	Error         string    `json:"error,omitempty"`
}

// RecomputeResult is the outcome of one full recomputation pass
type RecomputeResult struct {
	RuleSetVersion int64             `json:"rule_set_version"`
	ResetCount     int64             `json:"reset_count"`
	Applications   []RuleApplication `json:"applications"`
	Restarts       int               `json:"restarts"`
}

// AppliedResult is the outcome of a filtered apply
type AppliedResult struct {
	Rule          RuleResponse `json:"rule"`
	AffectedCount int64        `json:"affected_count"`
	Preview       string       `json:"preview"`
}

// ChangeLogQuery narrows a change log listing
type ChangeLogQuery struct {
	EntityType string `form:"entity_type"`
	ActionType string `form:"action_type"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// ChangeLogEntryResponse represents a change log entry in API responses
type ChangeLogEntryResponse struct {
	ID         uuid.UUID      `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   *uuid.UUID     `json:"entity_id,omitempty"`
	ActionType string         `json:"action_type"`
	Details    map[string]any `json:"details,omitempty"`
	ActorID    *uuid.UUID     `json:"actor_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// ToChangeLogEntryResponse converts a change log entry to a response DTO
func ToChangeLogEntryResponse(entry *discount.ChangeLogEntry) ChangeLogEntryResponse {
	return ChangeLogEntryResponse{
		ID:         entry.ID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		ActionType: entry.ActionType,
		Details:    entry.Details,
		ActorID:    entry.ActorID,
		OccurredAt: entry.OccurredAt,
	}
}

// ToChangeLogEntryResponses converts an entry slice to response DTOs
func ToChangeLogEntryResponses(entries []discount.ChangeLogEntry) []ChangeLogEntryResponse {
	responses := make([]ChangeLogEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToChangeLogEntryResponse(&entries[i])
	}
	return responses
}
