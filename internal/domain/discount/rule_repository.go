package discount

import (
	"context"

	"github.com/google/uuid"
)

// RuleRepository persists discount rules and the rule-set version counter.
//
// The version counter increases on every structural change to the active
// rule set (create or deactivate). Recomputation reads it before resetting
// product discounts and re-reads it before reporting, restarting when a
// concurrent change landed in between.
type RuleRepository interface {
	// Create inserts the rule and bumps the rule-set version in one
	// transaction.
	Create(ctx context.Context, rule *Rule) error
	// FindByID returns the rule regardless of its active flag.
	FindByID(ctx context.Context, id uuid.UUID) (*Rule, error)
	// ListActive returns all active rules in ascending creation order.
	// Each call issues a fresh query; the result is finite and restartable.
	ListActive(ctx context.Context) ([]Rule, error)
	// Deactivate flips the rule's active flag and bumps the rule-set
	// version in one transaction, returning the prior snapshot. It fails
	// with shared.ErrNotFound when the rule is absent or already inactive.
	Deactivate(ctx context.Context, id uuid.UUID) (*Rule, error)
	// Version returns the current rule-set version counter.
	Version(ctx context.Context) (int64, error)
}
