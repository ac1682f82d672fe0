package discount

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRule(t *testing.T) {
	operatorID := uuid.New()

	t.Run("creates all-products rule", func(t *testing.T) {
		rule, err := NewRule(ScopeAllProducts, nil, 20, &operatorID)
		require.NoError(t, err)
		require.NotNil(t, rule)

		assert.Equal(t, ScopeAllProducts, rule.Scope)
		assert.Nil(t, rule.TargetID)
		assert.Equal(t, 20, rule.Percentage)
		assert.True(t, rule.Active)
		assert.NotEmpty(t, rule.ID)
		assert.Equal(t, 1, rule.GetVersion())
		require.NotNil(t, rule.GetCreatedBy())
		assert.Equal(t, operatorID, *rule.GetCreatedBy())
	})

	t.Run("creates category rule with target", func(t *testing.T) {
		targetID := uuid.New()
		rule, err := NewRule(ScopeCategory, &targetID, 15, &operatorID)
		require.NoError(t, err)

		assert.Equal(t, ScopeCategory, rule.Scope)
		require.NotNil(t, rule.TargetID)
		assert.Equal(t, targetID, *rule.TargetID)
	})

	t.Run("publishes RuleCreated event", func(t *testing.T) {
		rule, err := NewRule(ScopeAllProducts, nil, 10, &operatorID)
		require.NoError(t, err)

		events := rule.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeRuleCreated, events[0].EventType())

		event, ok := events[0].(*RuleCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, rule.ID, event.RuleID)
		assert.Equal(t, 10, event.Percentage)
	})

	t.Run("accepts boundary percentages", func(t *testing.T) {
		for _, pct := range []int{0, 100} {
			rule, err := NewRule(ScopeAllProducts, nil, pct, &operatorID)
			require.NoError(t, err)
			assert.Equal(t, pct, rule.Percentage)
		}
	})

	t.Run("fails with unknown scope", func(t *testing.T) {
		_, err := NewRule(RuleScope("storewide"), nil, 10, &operatorID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown rule scope")
	})

	t.Run("fails with percentage out of range", func(t *testing.T) {
		_, err := NewRule(ScopeAllProducts, nil, 101, &operatorID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "between 0 and 100")

		_, err = NewRule(ScopeAllProducts, nil, -1, &operatorID)
		require.Error(t, err)
	})

	t.Run("fails when all-products rule carries a target", func(t *testing.T) {
		targetID := uuid.New()
		_, err := NewRule(ScopeAllProducts, &targetID, 10, &operatorID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Target must be empty")
	})

	t.Run("fails when scoped rule lacks a target", func(t *testing.T) {
		_, err := NewRule(ScopeCategory, nil, 10, &operatorID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Target is required")

		_, err = NewRule(ScopeSubcategory, nil, 10, &operatorID)
		require.Error(t, err)
	})
}

func TestRuleDeactivate(t *testing.T) {
	operatorID := uuid.New()

	t.Run("deactivates an active rule", func(t *testing.T) {
		rule, err := NewRule(ScopeAllProducts, nil, 10, &operatorID)
		require.NoError(t, err)
		rule.ClearDomainEvents()

		err = rule.Deactivate()
		require.NoError(t, err)
		assert.False(t, rule.IsActive())

		events := rule.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeRuleDeactivated, events[0].EventType())
	})

	t.Run("reports not found when already inactive", func(t *testing.T) {
		rule, err := NewRule(ScopeAllProducts, nil, 10, &operatorID)
		require.NoError(t, err)
		require.NoError(t, rule.Deactivate())

		err = rule.Deactivate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestRuleSnapshot(t *testing.T) {
	operatorID := uuid.New()

	rule, err := NewRule(ScopeAllProducts, nil, 25, &operatorID)
	require.NoError(t, err)

	snapshot := rule.Snapshot()
	assert.Equal(t, rule.ID, snapshot.ID)
	assert.Equal(t, rule.Percentage, snapshot.Percentage)
	assert.Empty(t, snapshot.GetDomainEvents())
	assert.NotEmpty(t, rule.GetDomainEvents())
}

func TestRuleScopeIsValid(t *testing.T) {
	assert.True(t, ScopeAllProducts.IsValid())
	assert.True(t, ScopeCategory.IsValid())
	assert.True(t, ScopeSubcategory.IsValid())
	assert.False(t, RuleScope("").IsValid())
	assert.False(t, RuleScope("brand").IsValid())
}
