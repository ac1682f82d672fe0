package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/discount"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultPricingChannel is the Redis Pub/Sub channel carrying pricing
// change notifications
const DefaultPricingChannel = "storefront:pricing"

const notifierCloseTimeout = 5 * time.Second

// PricingMessage is the wire form of a pricing change notification.
//
// It is an invalidation hint, not state: consumers refetch product pricing
// when they receive one, and a fresh reload must never depend on having
// observed one.
type PricingMessage struct {
	EventType     string `json:"event_type"`
	RuleID        string `json:"rule_id"`
	AffectedCount int64  `json:"affected_count,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}

// RedisPricingNotifier bridges discount domain events onto Redis Pub/Sub
// so that other instances and connected sessions learn about pricing
// changes. It implements shared.EventHandler and is subscribed to the
// in-memory bus; delivery is best-effort and at-most-once.
type RedisPricingNotifier struct {
	client    *redis.Client
	channel   string
	logger    *zap.Logger
	cancelFn  context.CancelFunc
	doneCh    chan struct{}
	doneOnce  sync.Once
	mu        sync.Mutex
	isRunning bool
}

// RedisPricingNotifierOption is a functional option for configuring the notifier
type RedisPricingNotifierOption func(*RedisPricingNotifier)

// WithPricingChannel sets the Pub/Sub channel name
func WithPricingChannel(channel string) RedisPricingNotifierOption {
	return func(n *RedisPricingNotifier) {
		n.channel = channel
	}
}

// WithNotifierLogger sets the logger for the notifier
func WithNotifierLogger(logger *zap.Logger) RedisPricingNotifierOption {
	return func(n *RedisPricingNotifier) {
		n.logger = logger
	}
}

// NewRedisPricingNotifier creates a notifier on an existing Redis client.
// The caller retains ownership of the client and is responsible for
// closing it.
func NewRedisPricingNotifier(client *redis.Client, opts ...RedisPricingNotifierOption) *RedisPricingNotifier {
	notifier := &RedisPricingNotifier{
		client:  client,
		channel: DefaultPricingChannel,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(notifier)
	}

	return notifier
}

// EventTypes implements shared.EventHandler
func (n *RedisPricingNotifier) EventTypes() []string {
	return []string{
		discount.EventTypePricingChanged,
		discount.EventTypeRuleCreated,
		discount.EventTypeRuleDeactivated,
	}
}

// Handle implements shared.EventHandler, forwarding the event to Redis
func (n *RedisPricingNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	return n.publish(ctx, newPricingMessage(event))
}

// newPricingMessage builds the wire form of a domain event
func newPricingMessage(event shared.DomainEvent) PricingMessage {
	msg := PricingMessage{
		EventType: event.EventType(),
		RuleID:    event.AggregateID().String(),
		Timestamp: time.Now().UnixNano(),
	}
	if pricing, ok := event.(*discount.PricingChangedEvent); ok {
		msg.AffectedCount = pricing.AffectedCount
	}
	return msg
}

// publish sends a pricing notification to all subscribers
func (n *RedisPricingNotifier) publish(ctx context.Context, msg PricingMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal pricing message: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		n.logger.Error("failed to publish pricing message",
			zap.String("channel", n.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish pricing message: %w", err)
	}

	n.logger.Debug("published pricing message",
		zap.String("event_type", msg.EventType),
		zap.String("rule_id", msg.RuleID))

	return nil
}

// Subscribe listens for pricing notifications and invokes the callback
// for each one. It blocks until the context is cancelled or Close is
// called, so it should run in its own goroutine.
func (n *RedisPricingNotifier) Subscribe(ctx context.Context, callback func(msg PricingMessage)) error {
	n.mu.Lock()
	if n.isRunning {
		n.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	n.isRunning = true
	n.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	n.mu.Lock()
	n.cancelFn = cancel
	n.mu.Unlock()

	pubsub := n.client.Subscribe(subCtx, n.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		n.mu.Lock()
		n.isRunning = false
		n.mu.Unlock()
		// Unblock a concurrent Close waiting on the subscription.
		n.markDone()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	n.logger.Info("subscribed to pricing channel",
		zap.String("channel", n.channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			n.logger.Info("pricing subscription stopped")
			n.mu.Lock()
			n.isRunning = false
			n.mu.Unlock()
			n.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				n.logger.Warn("pricing channel closed")
				n.mu.Lock()
				n.isRunning = false
				n.mu.Unlock()
				n.markDone()
				return nil
			}

			var pricingMsg PricingMessage
			if err := json.Unmarshal([]byte(msg.Payload), &pricingMsg); err != nil {
				n.logger.Error("failed to unmarshal pricing message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			go func(m PricingMessage) {
				defer func() {
					if r := recover(); r != nil {
						n.logger.Error("panic in pricing callback",
							zap.Any("panic", r))
					}
				}()
				callback(m)
			}(pricingMsg)
		}
	}
}

// markDone safely marks the notifier subscription as finished
func (n *RedisPricingNotifier) markDone() {
	n.doneOnce.Do(func() {
		close(n.doneCh)
	})
}

// Close stops an active subscription
func (n *RedisPricingNotifier) Close() error {
	n.mu.Lock()
	cancelFn := n.cancelFn
	n.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-n.doneCh:
		case <-time.After(notifierCloseTimeout):
			n.logger.Warn("timeout waiting for pricing subscription to stop")
		}
	}
	return nil
}

// Ensure RedisPricingNotifier implements EventHandler
var _ shared.EventHandler = (*RedisPricingNotifier)(nil)
