package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"councellorx-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// FeedMessage is one frame on the chat feed.
type FeedMessage struct {
	Type       string      `json:"type"`
	Data       interface{} `json:"data"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// clusterEnvelope carries a frame to other instances. Origin lets an
// instance skip frames it already delivered locally.
type clusterEnvelope struct {
	Origin       string          `json:"origin"`
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

type Hub struct {
	// UserID -> connections (one per tab/device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// nil when running as a single instance
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.UserID]
			for i, c := range clients {
				if c == client {
					h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
					close(client.Send)
					break
				}
			}
			if len(h.clients[client.UserID]) == 0 {
				delete(h.clients, client.UserID)
				h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
			}
			h.mu.Unlock()
		}
	}
}

// Notify delivers an event to every connection of userID, here and on the
// other instances.
func (h *Hub) Notify(userID uuid.UUID, eventType string, data interface{}) {
	frame, err := json.Marshal(FeedMessage{Type: eventType, Data: data, OccurredAt: time.Now()})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode feed frame", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}

	h.deliver(userID, frame)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEnvelope{
			Origin:       h.instanceID,
			TargetUserID: userID.String(),
			Message:      frame,
		})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliver(userID uuid.UUID, frame []byte) {
	// Sends are non-blocking and happen under the read lock so Run cannot
	// close a channel mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[userID] {
		select {
		case client.Send <- frame:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// ConnectionCount is the number of local connections of userID.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// All instances subscribe to one channel and keep the frames addressed to
// users connected locally.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var env clusterEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if env.Origin == h.instanceID {
			continue
		}
		uid, err := uuid.Parse(env.TargetUserID)
		if err != nil {
			continue
		}
		h.deliver(uid, env.Message)
	}
}
