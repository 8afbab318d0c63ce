// Package push fans session and cart state-change events out to connected
// UIs over websocket, so a browser re-renders without polling the gateway.
// Clients are anonymous listeners; the socket carries no inbound commands.
package push

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types published by the services.
const (
	EventSessionUpdated = "session:updated"
	EventSessionCleared = "session:cleared"
	EventCartUpdated    = "cart:updated"
	EventCartDrawer     = "cart:drawer"
)

// Event is the JSON frame sent to every connected UI.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// Publish broadcasts a state-change event to every connected UI. It never
// blocks the calling service: when the broadcast buffer is full the event is
// dropped and logged, since the UI can always re-fetch current state.
func (h *Hub) Publish(eventType string, data any) {
	raw, err := json.Marshal(Event{Type: eventType, Data: data, At: time.Now()})
	if err != nil {
		h.logger.Error("failed to encode push event",
			zap.String("type", eventType),
			zap.Error(err),
		)
		return
	}

	select {
	case h.broadcast <- raw:
	default:
		h.logger.Warn("push buffer full, dropping event", zap.String("type", eventType))
	}
}

// TotalClients returns the number of connected UIs.
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) fanOut(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			// Slow consumer: drop the client rather than the whole hub.
			h.removeClient(client)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		client.conn.Close()
	}
	h.clients = make(map[*Client]bool)
}
