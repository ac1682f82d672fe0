package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID     string
	UserID string
	Chan   chan SSEMessage
	Done   chan struct{}
}

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// PricingSSEHandler streams pricing change notifications to connected
// clients over Server-Sent Events. Messages are hints to refetch product
// pricing; a client that misses one recovers on its next full load.
type PricingSSEHandler struct {
	BaseHandler
	notifier   *event.RedisPricingNotifier
	logger     *zap.Logger
	clients    sync.Map // map[string]*SSEClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	started    bool
	startMu    sync.Mutex
	maxClients int
}

// PricingSSEOption is a functional option for configuring the handler
type PricingSSEOption func(*PricingSSEHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) PricingSSEOption {
	return func(h *PricingSSEHandler) {
		h.logger = logger
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) PricingSSEOption {
	return func(h *PricingSSEHandler) {
		h.heartbeat = interval
	}
}

// WithSSEMaxClients sets the maximum number of concurrent SSE clients
func WithSSEMaxClients(max int) PricingSSEOption {
	return func(h *PricingSSEHandler) {
		h.maxClients = max
	}
}

// NewPricingSSEHandler creates a new SSE handler for pricing updates
func NewPricingSSEHandler(notifier *event.RedisPricingNotifier, opts ...PricingSSEOption) *PricingSSEHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &PricingSSEHandler{
		notifier:   notifier,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 10000,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// RegisterRoutes registers the SSE stream route
func (h *PricingSSEHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/events/stream", h.Stream)
}

// Start begins listening for pricing notifications and broadcasting to clients
func (h *PricingSSEHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return fmt.Errorf("SSE handler already started")
	}

	go h.sendHeartbeats()

	go func() {
		err := h.notifier.Subscribe(h.ctx, h.handlePricingMessage)
		if err != nil && h.ctx.Err() == nil {
			h.logger.Error("SSE subscription error", zap.Error(err))
		}
	}()

	h.started = true
	h.logger.Info("Pricing SSE handler started")
	return nil
}

// Stop stops the SSE handler and disconnects all clients
func (h *PricingSSEHandler) Stop() {
	h.cancel()

	h.clients.Range(func(key, value any) bool {
		if client, ok := value.(*SSEClient); ok {
			close(client.Done)
		}
		return true
	})

	h.logger.Info("Pricing SSE handler stopped")
}

// handlePricingMessage broadcasts a pricing notification to all clients
func (h *PricingSSEHandler) handlePricingMessage(msg event.PricingMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal SSE event", zap.Error(err))
		return
	}

	h.broadcast(SSEMessage{
		Event: "pricing_changed",
		Data:  string(data),
		ID:    fmt.Sprintf("%d", msg.Timestamp),
	})
}

// broadcast sends a message to all connected clients
func (h *PricingSSEHandler) broadcast(msg SSEMessage) {
	h.clients.Range(func(key, value any) bool {
		client, ok := value.(*SSEClient)
		if !ok {
			return true
		}

		select {
		case client.Chan <- msg:
		default:
			// Channel full, client is slow; the message is a refetch hint
			// so dropping it is safe
			h.logger.Warn("Client channel full, dropping message",
				zap.String("client_id", client.ID))
		}
		return true
	})
}

// sendHeartbeats periodically sends heartbeat messages to keep connections alive
func (h *PricingSSEHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.broadcast(SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		}
	}
}

// Stream handles GET /events/stream
func (h *PricingSSEHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.GetClientCount() >= h.maxClients {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MAX_CONNECTIONS_REACHED",
				"message": "Maximum number of SSE connections reached",
			},
		})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	const sseMessageBufferSize = 100
	client := &SSEClient{
		ID:     uuid.New().String(),
		UserID: middleware.GetJWTUserID(c),
		Chan:   make(chan SSEMessage, sseMessageBufferSize),
		Done:   make(chan struct{}),
	}

	h.clients.Store(client.ID, client)
	defer func() {
		close(client.Chan)
		h.clients.Delete(client.ID)
	}()

	h.logger.Info("SSE client connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID))

	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected",
				zap.String("client_id", client.ID))
			return
		case <-client.Done:
			return
		case <-h.ctx.Done():
			return
		case msg, ok := <-client.Chan:
			if !ok {
				return
			}
			h.sendEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// sendEvent writes an SSE event to the response writer
func (h *PricingSSEHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

// GetClientCount returns the number of connected SSE clients
func (h *PricingSSEHandler) GetClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
