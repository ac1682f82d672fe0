package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler(discount.EventTypePricingChanged)
	bus.Subscribe(handler, discount.EventTypePricingChanged)

	event := discount.NewPricingChangedEvent(uuid.New(), 3)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler1 := newTestHandler(discount.EventTypePricingChanged)
	handler2 := newTestHandler(discount.EventTypePricingChanged)
	bus.Subscribe(handler1, discount.EventTypePricingChanged)
	bus.Subscribe(handler2, discount.EventTypePricingChanged)

	event := discount.NewPricingChangedEvent(uuid.New(), 1)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	wildcardHandler := newTestHandler()
	bus.Subscribe(wildcardHandler)

	rule, err := discount.NewRule(discount.ScopeAllProducts, nil, 10, nil)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(),
		discount.NewRuleCreatedEvent(rule),
		discount.NewPricingChangedEvent(rule.ID, 2),
	))
	assert.Len(t, wildcardHandler.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler(discount.EventTypePricingChanged)
	failing.err = errors.New("handler failed")
	healthy := newTestHandler(discount.EventTypePricingChanged)

	bus.Subscribe(failing, discount.EventTypePricingChanged)
	bus.Subscribe(healthy, discount.EventTypePricingChanged)

	event := discount.NewPricingChangedEvent(uuid.New(), 5)
	err := bus.Publish(context.Background(), event)

	// A failing handler never fails the publish or blocks other handlers
	require.NoError(t, err)
	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_NoHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	event := discount.NewPricingChangedEvent(uuid.New(), 0)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler(discount.EventTypePricingChanged)
	bus.Subscribe(handler, discount.EventTypePricingChanged)
	bus.Unsubscribe(handler)

	event := discount.NewPricingChangedEvent(uuid.New(), 1)
	require.NoError(t, bus.Publish(context.Background(), event))
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}
