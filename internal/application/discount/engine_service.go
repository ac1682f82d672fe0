package discount

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// DefaultChunkSize bounds one bulk discount UPDATE statement
	DefaultChunkSize = 500
	// DefaultMaxRestarts bounds recompute restarts when concurrent rule
	// changes keep bumping the rule-set version
	DefaultMaxRestarts = 3
)

// EngineService owns the discount application engine: it derives each
// product's effective discountPercentage from the active rule set.
//
// Recomputation is reset-then-replay: zero every active product, then
// replay the active rules in creation order so the most recently created
// rule wins on overlap. The pass is idempotent and safe to repeat
// wholesale; it is never resumed mid-flight.
type EngineService struct {
	rules          discount.RuleRepository
	products       catalog.ProductRepository
	categories     catalog.CategoryRepository
	subcategories  catalog.SubcategoryRepository
	changeLog      discount.ChangeLogRepository
	compiler       *discount.Compiler
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	chunkSize      int
	maxRestarts    int
}

// NewEngineService creates a new EngineService
func NewEngineService(
	rules discount.RuleRepository,
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	subcategories catalog.SubcategoryRepository,
	changeLog discount.ChangeLogRepository,
) *EngineService {
	return &EngineService{
		rules:         rules,
		products:      products,
		categories:    categories,
		subcategories: subcategories,
		changeLog:     changeLog,
		compiler:      discount.NewProductCompiler(),
		logger:        zap.NewNop(),
		chunkSize:     DefaultChunkSize,
		maxRestarts:   DefaultMaxRestarts,
	}
}

// SetEventPublisher sets the event publisher for pricing-change events
func (s *EngineService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the service logger
func (s *EngineService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetChunkSize overrides the bulk update chunk size
func (s *EngineService) SetChunkSize(size int) {
	if size > 0 {
		s.chunkSize = size
	}
}

// SetMaxRestarts overrides the recompute restart budget
func (s *EngineService) SetMaxRestarts(max int) {
	if max >= 0 {
		s.maxRestarts = max
	}
}

// CreateRule creates a discount rule and recomputes all effective
// discounts. The returned result carries the per-rule outcomes of the
// recomputation pass that followed the create.
func (s *EngineService) CreateRule(ctx context.Context, req CreateRuleRequest) (*RuleResponse, *RecomputeResult, error) {
	if err := s.checkTarget(ctx, discount.RuleScope(req.Scope), req.TargetID); err != nil {
		return nil, nil, err
	}

	rule, err := discount.NewRule(discount.RuleScope(req.Scope), req.TargetID, req.Percentage, req.Actor)
	if err != nil {
		return nil, nil, err
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, nil, err
	}

	s.appendLog(ctx, discount.NewChangeLogEntry(discount.EntityTypeRule, discount.ActionRuleCreated, map[string]any{
		"scope":      req.Scope,
		"target_id":  req.TargetID,
		"percentage": req.Percentage,
	}).WithEntityID(rule.ID), req.Actor)

	s.publishEvents(ctx, rule.GetDomainEvents())
	rule.ClearDomainEvents()

	result, err := s.RecomputeAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	response := ToRuleResponse(rule)
	return &response, result, nil
}

// RemoveRule deactivates a rule and recomputes all effective discounts.
// The prior rule snapshot is returned; the deactivation is attributed to
// the acting operator in the change log.
func (s *EngineService) RemoveRule(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*RuleResponse, *RecomputeResult, error) {
	prior, err := s.rules.Deactivate(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	s.appendLog(ctx, discount.NewChangeLogEntry(discount.EntityTypeRule, discount.ActionRuleDeactivated, map[string]any{
		"scope":      string(prior.Scope),
		"target_id":  prior.TargetID,
		"percentage": prior.Percentage,
	}).WithEntityID(prior.ID), actor)

	s.publishEvents(ctx, []shared.DomainEvent{discount.NewRuleDeactivatedEvent(prior)})

	result, err := s.RecomputeAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	response := ToRuleResponse(prior)
	return &response, result, nil
}

// ListRules returns the active rule set in creation order
func (s *EngineService) ListRules(ctx context.Context) ([]RuleResponse, error) {
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return ToRuleResponses(rules), nil
}

// GetRule returns one rule regardless of its active flag
func (s *EngineService) GetRule(ctx context.Context, id uuid.UUID) (*RuleResponse, error) {
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToRuleResponse(rule)
	return &response, nil
}

// RecomputeAll resets every active product's discount and replays the
// active rule set in creation order. A concurrent structural change to the
// rule set (detected through the rule-set version counter) restarts the
// pass, bounded by maxRestarts.
func (s *EngineService) RecomputeAll(ctx context.Context) (*RecomputeResult, error) {
	return s.recompute(ctx, uuid.Nil, nil)
}

// recompute runs one or more reset-then-replay passes. When narrowRuleID
// is set, the matching rule's target set is intersected with candidateIDs.
func (s *EngineService) recompute(ctx context.Context, narrowRuleID uuid.UUID, candidateIDs []uuid.UUID) (*RecomputeResult, error) {
	var result *RecomputeResult

	for restart := 0; ; restart++ {
		version, err := s.rules.Version(ctx)
		if err != nil {
			return nil, err
		}

		reset, err := s.products.ResetActiveDiscounts(ctx)
		if err != nil {
			return nil, err
		}

		rules, err := s.rules.ListActive(ctx)
		if err != nil {
			return nil, err
		}

		applications := make([]RuleApplication, 0, len(rules))
		for i := range rules {
			rule := &rules[i]
			var narrowing []uuid.UUID
			if narrowRuleID != uuid.Nil && rule.ID == narrowRuleID {
				narrowing = candidateIDs
			}
			applications = append(applications, s.ApplyRule(ctx, rule, narrowing))
		}

		current, err := s.rules.Version(ctx)
		if err != nil {
			return nil, err
		}

		result = &RecomputeResult{
			RuleSetVersion: current,
			ResetCount:     reset,
			Applications:   applications,
			Restarts:       restart,
		}

		if current == version {
			break
		}
		if restart >= s.maxRestarts {
			s.logger.Warn("recompute restart budget exhausted, keeping last pass",
				zap.Int64("started_version", version),
				zap.Int64("current_version", current),
				zap.Int("restarts", restart))
			break
		}

		s.logger.Info("rule set changed during recompute, restarting",
			zap.Int64("started_version", version),
			zap.Int64("current_version", current))
	}

	s.appendLog(ctx, discount.NewChangeLogEntry(discount.EntityTypeProduct, discount.ActionRecomputed, map[string]any{
		"rule_set_version": result.RuleSetVersion,
		"reset_count":      result.ResetCount,
		"rule_count":       len(result.Applications),
		"restarts":         result.Restarts,
	}), nil)

	return result, nil
}

// ApplyRule writes one rule's percentage onto its target set. When
// candidateIDs is non-nil the target set is intersected with it. A failure
// anywhere in the write reports zero affected rows for the rule; the
// partially written state is repaired by the next wholesale recompute.
func (s *EngineService) ApplyRule(ctx context.Context, rule *discount.Rule, candidateIDs []uuid.UUID) RuleApplication {
	application := RuleApplication{RuleID: rule.ID, Percentage: rule.Percentage}

	ids, err := s.resolveTargets(ctx, rule)
	if err != nil {
		application.Error = err.Error()
		s.logger.Error("failed to resolve rule targets",
			zap.String("rule_id", rule.ID.String()),
			zap.Error(err))
		return application
	}

	if candidateIDs != nil {
		ids = intersectIDs(ids, candidateIDs)
	}

	affected, err := s.bulkApply(ctx, ids, rule.Percentage)
	if err != nil {
		application.Error = err.Error()
		s.logger.Error("bulk discount write failed",
			zap.String("rule_id", rule.ID.String()),
			zap.Int("percentage", rule.Percentage),
			zap.Error(err))
		return application
	}

	application.AffectedCount = affected

	s.appendLog(ctx, discount.NewChangeLogEntry(discount.EntityTypeProduct, discount.ActionRuleApplied, map[string]any{
		"percentage":     rule.Percentage,
		"affected_count": affected,
	}).WithEntityID(rule.ID), nil)

	s.notifyPricingChanged(ctx, rule.ID, affected)

	return application
}

// ApplyWithFilter creates a rule and recomputes with the new rule narrowed
// to the products matching the condition list at this moment. The filter
// itself is never persisted; later recomputes apply the rule to its full
// scope.
func (s *EngineService) ApplyWithFilter(ctx context.Context, req ApplyFilteredRequest) (*AppliedResult, error) {
	filter, err := s.compiler.Compile(req.Conditions)
	if err != nil {
		return nil, err
	}

	if err := s.checkTarget(ctx, discount.RuleScope(req.Scope), req.TargetID); err != nil {
		return nil, err
	}

	candidates, err := s.snapshotCandidates(ctx, filter.Predicate)
	if err != nil {
		return nil, err
	}

	rule, err := discount.NewRule(discount.RuleScope(req.Scope), req.TargetID, req.Percentage, req.Actor)
	if err != nil {
		return nil, err
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.appendLog(ctx, discount.NewChangeLogEntry(discount.EntityTypeRule, discount.ActionFilteredApply, map[string]any{
		"scope":           req.Scope,
		"target_id":       req.TargetID,
		"percentage":      req.Percentage,
		"preview":         filter.Preview,
		"candidate_count": len(candidates),
	}).WithEntityID(rule.ID), req.Actor)

	s.publishEvents(ctx, rule.GetDomainEvents())
	rule.ClearDomainEvents()

	result, err := s.recompute(ctx, rule.ID, candidates)
	if err != nil {
		return nil, err
	}

	applied := &AppliedResult{
		Rule:    ToRuleResponse(rule),
		Preview: filter.Preview,
	}
	for _, application := range result.Applications {
		if application.RuleID == rule.ID {
			applied.AffectedCount = application.AffectedCount
			if application.Error != "" {
				return nil, shared.ErrPartialApplication
			}
		}
	}

	return applied, nil
}

// PreviewFilter renders a condition list without touching any state
func (s *EngineService) PreviewFilter(conditions []discount.Condition) (*PreviewResponse, error) {
	filter, err := s.compiler.Compile(conditions)
	if err != nil {
		return nil, err
	}
	return &PreviewResponse{Preview: filter.Preview}, nil
}

// checkTarget verifies that a scoped rule points at an existing catalog
// grouping
func (s *EngineService) checkTarget(ctx context.Context, scope discount.RuleScope, targetID *uuid.UUID) error {
	if targetID == nil {
		return nil
	}

	switch scope {
	case discount.ScopeCategory:
		if _, err := s.categories.FindByID(ctx, *targetID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("NOT_FOUND", "Target category not found")
			}
			return err
		}
	case discount.ScopeSubcategory:
		if _, err := s.subcategories.FindByID(ctx, *targetID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("NOT_FOUND", "Target subcategory not found")
			}
			return err
		}
	}

	return nil
}

// resolveTargets returns the active product IDs a rule targets
func (s *EngineService) resolveTargets(ctx context.Context, rule *discount.Rule) ([]uuid.UUID, error) {
	switch rule.Scope {
	case discount.ScopeAllProducts:
		return s.products.FindActiveIDs(ctx)
	case discount.ScopeCategory:
		return s.products.FindActiveIDsByCategory(ctx, *rule.TargetID)
	case discount.ScopeSubcategory:
		return s.products.FindActiveIDsBySubcategory(ctx, *rule.TargetID)
	}
	return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown rule scope %q", rule.Scope))
}

// bulkApply writes the percentage in chunks. A failed pass is retried once
// from the very first chunk, never resumed from the failure point.
func (s *EngineService) bulkApply(ctx context.Context, ids []uuid.UUID, percentage int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		var total int64
		lastErr = nil
		for start := 0; start < len(ids); start += s.chunkSize {
			end := min(start+s.chunkSize, len(ids))
			affected, err := s.products.BulkUpdateDiscount(ctx, ids[start:end], percentage)
			if err != nil {
				lastErr = err
				break
			}
			total += affected
		}
		if lastErr == nil {
			return total, nil
		}
	}

	return 0, lastErr
}

// snapshotCandidates evaluates the predicate over all active products and
// returns the matching IDs as a point-in-time set
func (s *EngineService) snapshotCandidates(ctx context.Context, predicate discount.Predicate) ([]uuid.UUID, error) {
	products, err := s.products.FindActive(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(products))
	for i := range products {
		if predicate(&products[i]) {
			ids = append(ids, products[i].ID)
		}
	}
	return ids, nil
}

// appendLog appends a change-log entry, logging instead of failing the
// operation when the append itself errors
func (s *EngineService) appendLog(ctx context.Context, entry *discount.ChangeLogEntry, actor *uuid.UUID) {
	if actor != nil {
		entry.WithActor(*actor)
	}
	if err := s.changeLog.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append change log entry",
			zap.String("action_type", entry.ActionType),
			zap.Error(err))
	}
}

// notifyPricingChanged publishes a best-effort pricing-change event
func (s *EngineService) notifyPricingChanged(ctx context.Context, ruleID uuid.UUID, affected int64) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, discount.NewPricingChangedEvent(ruleID, affected))
}

// publishEvents publishes pending domain events, best effort
func (s *EngineService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// intersectIDs returns ids restricted to the candidate set
func intersectIDs(ids, candidates []uuid.UUID) []uuid.UUID {
	allowed := make(map[uuid.UUID]struct{}, len(candidates))
	for _, id := range candidates {
		allowed[id] = struct{}{}
	}

	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
