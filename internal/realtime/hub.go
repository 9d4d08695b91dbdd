package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campushub/portal-api/pkg/config"
)

// Hub owns every live websocket client and fans events out to them. Clients
// have an explicit acquire/release lifecycle keyed by user: acquiring for a
// user who already holds a client (token refresh, second tab) tears down the
// old connection first, and logout releases the user's client. A Redis
// channel bridges events between API instances so a client connected
// elsewhere still receives them.
type Hub struct {
	cfg    config.RealtimeConfig
	redis  *redis.Client
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	closed  bool
}

// NewHub constructs the realtime hub.
func NewHub(cfg config.RealtimeConfig, redisClient *redis.Client, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Hub{
		cfg:     cfg,
		redis:   redisClient,
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// Run subscribes to the Redis broker channel and delivers remote events to
// local clients until the context is cancelled. It is a no-op when Redis is
// not configured (single-instance deployments).
func (h *Hub) Run(ctx context.Context) {
	if h.redis == nil {
		<-ctx.Done()
		return
	}

	sub := h.redis.Subscribe(ctx, h.cfg.Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Warn("malformed realtime event from broker", zap.Error(err))
				continue
			}
			h.deliver(event)
		}
	}
}

// Acquire registers a websocket connection for the user and starts its
// pumps. An existing client for the same user is released first, so a
// reconnect always results in a fresh connection owning the user's slot; a
// replacement carrying a different token is a credential rotation and is
// logged as such.
func (h *Hub) Acquire(userID, token string, conn *websocket.Conn) *Client {
	client := &Client{
		userID: userID,
		token:  token,
		conn:   conn,
		send:   make(chan []byte, h.cfg.SendBufferSize),
		hub:    h,
		logger: h.logger,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	if previous, ok := h.clients[userID]; ok {
		if previous.token != token {
			h.logger.Debug("realtime token rotated, recreating client", zap.String("user_id", userID))
		}
		close(previous.send)
	}
	h.clients[userID] = client
	h.mu.Unlock()

	go client.writePump(h.cfg.WriteTimeout, h.cfg.PingInterval)
	go client.readPump()

	h.logger.Debug("realtime client acquired", zap.String("user_id", userID))
	return client
}

// Release removes the client from the hub and closes its send channel. It is
// safe to call for a client that was already replaced.
func (h *Hub) Release(client *Client) {
	if client == nil {
		return
	}
	h.mu.Lock()
	current, ok := h.clients[client.userID]
	if ok && current == client {
		delete(h.clients, client.userID)
		close(client.send)
	}
	h.mu.Unlock()

	if ok && current == client {
		h.logger.Debug("realtime client released", zap.String("user_id", client.userID))
	}
}

// ReleaseUser tears down whatever client the user holds, used on logout.
func (h *Hub) ReleaseUser(userID string) {
	h.mu.Lock()
	client, ok := h.clients[userID]
	if ok {
		delete(h.clients, userID)
		close(client.send)
	}
	h.mu.Unlock()
}

// Publish sends the event to local recipients and, when Redis is configured,
// to the broker channel so other instances deliver it too.
func (h *Hub) Publish(ctx context.Context, event Event) {
	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}
	h.deliver(event)

	if h.redis == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to marshal realtime event", zap.Error(err))
		return
	}
	if err := h.redis.Publish(ctx, h.cfg.Channel, payload).Err(); err != nil {
		h.logger.Warn("failed to publish realtime event", zap.Error(err))
	}
}

// Connected reports whether the user currently holds a live client.
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// Close releases every client. New acquisitions are refused afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for userID, client := range h.clients {
		delete(h.clients, userID)
		close(client.send)
	}
}

func (h *Hub) deliver(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to marshal realtime event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := event.Recipients
	if len(targets) == 0 {
		for _, client := range h.clients {
			h.send(client, payload)
		}
		return
	}
	for _, userID := range targets {
		if client, ok := h.clients[userID]; ok {
			h.send(client, payload)
		}
	}
}

// send drops the event when the client's buffer is full rather than blocking
// the hub; a slow consumer only loses its own notifications.
func (h *Hub) send(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.logger.Debug("realtime buffer full, dropping event", zap.String("user_id", client.userID))
	}
}
