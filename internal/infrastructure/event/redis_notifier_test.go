package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUnreachableRedisClient returns a client that fails fast on any command
func newUnreachableRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNewPricingMessage(t *testing.T) {
	t.Run("carries the affected count for pricing changes", func(t *testing.T) {
		ruleID := uuid.New()
		msg := newPricingMessage(discount.NewPricingChangedEvent(ruleID, 42))

		assert.Equal(t, discount.EventTypePricingChanged, msg.EventType)
		assert.Equal(t, ruleID.String(), msg.RuleID)
		assert.Equal(t, int64(42), msg.AffectedCount)
		assert.NotZero(t, msg.Timestamp)
	})

	t.Run("leaves the affected count empty for rule lifecycle events", func(t *testing.T) {
		rule, err := discount.NewRule(discount.ScopeAllProducts, nil, 10, nil)
		require.NoError(t, err)

		msg := newPricingMessage(discount.NewRuleDeactivatedEvent(rule))

		assert.Equal(t, discount.EventTypeRuleDeactivated, msg.EventType)
		assert.Equal(t, rule.ID.String(), msg.RuleID)
		assert.Zero(t, msg.AffectedCount)
	})
}

func TestRedisPricingNotifier_EventTypes(t *testing.T) {
	notifier := NewRedisPricingNotifier(newUnreachableRedisClient())
	defer notifier.Close()

	types := notifier.EventTypes()

	assert.Contains(t, types, discount.EventTypePricingChanged)
	assert.Contains(t, types, discount.EventTypeRuleCreated)
	assert.Contains(t, types, discount.EventTypeRuleDeactivated)
}

func TestRedisPricingNotifier_HandleReportsPublishFailure(t *testing.T) {
	client := newUnreachableRedisClient()
	defer client.Close()
	notifier := NewRedisPricingNotifier(client)

	err := notifier.Handle(context.Background(), discount.NewPricingChangedEvent(uuid.New(), 1))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish pricing message")
}

func TestRedisPricingNotifier_SubscribeFailure(t *testing.T) {
	client := newUnreachableRedisClient()
	defer client.Close()
	notifier := NewRedisPricingNotifier(client, WithPricingChannel("test:pricing"))

	err := notifier.Subscribe(context.Background(), func(msg PricingMessage) {})
	require.Error(t, err)

	// The failed attempt releases the running flag so a retry is possible.
	err = notifier.Subscribe(context.Background(), func(msg PricingMessage) {})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "already running")

	// Close must not block on a subscription that never got off the ground.
	done := make(chan struct{})
	go func() {
		_ = notifier.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after a failed subscribe")
	}
}

func TestRedisPricingNotifier_CloseWithoutSubscription(t *testing.T) {
	notifier := NewRedisPricingNotifier(newUnreachableRedisClient())

	assert.NoError(t, notifier.Close())
}
