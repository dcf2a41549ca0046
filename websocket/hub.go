// Package websocket keeps the live socket connections of every user and
// delivers notification frames to them.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"wink/logger"
	"wink/metrics"
	"wink/notify"

	"github.com/rs/zerolog"
)

// Hub maps user ids to the connections joined to them. A user may have
// several connections and a connection may join several users.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	metrics *metrics.Metrics
	log     *logger.Logger
}

var _ notify.Publisher = (*Hub)(nil)

func NewHub(m *metrics.Metrics, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		metrics: m,
		log:     log,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.ConnectionOpened()
}

// Join subscribes c to userID's frames.
func (h *Hub) Join(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[userID] = room
	}
	room[c] = struct{}{}
	c.rooms[userID] = struct{}{}
}

// Leave drops c from every room and closes its send queue.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for userID := range c.rooms {
		room := h.rooms[userID]
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, userID)
		}
	}
	c.rooms = map[string]struct{}{}
	delete(h.clients, c)
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	h.metrics.ConnectionClosed()
}

// Publish queues frame on every connection joined to userID and returns how
// many took it. Connections with a full queue miss the frame.
func (h *Hub) Publish(userID string, frame notify.Frame) int {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.log.Error(context.Background(), "encode frame", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered, dropped := 0, 0
	for c := range h.rooms[userID] {
		if c.closed {
			continue
		}
		select {
		case c.send <- payload:
			delivered++
		default:
			dropped++
			h.log.Event(c.ctx, zerolog.WarnLevel).
				Str("event", frame.Event).
				Str("room", userID).
				Msg("send queue full, frame dropped")
		}
	}
	h.metrics.ObserveDelivery(frame.Event, delivered, dropped)
	return delivered
}

// deliver queues payload on a single connection.
func (h *Hub) deliver(c *Client, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Connections reports how many connections are joined to userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Shutdown closes every send queue so each writer sends a close frame and
// exits. Joins after Shutdown are ignored.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.closed {
			c.closed = true
			close(c.send)
		}
	}
}
