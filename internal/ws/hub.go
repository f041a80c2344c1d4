// Package ws broadcasts alert and emergency events to connected monitoring
// dashboards.
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"crowd-safety-service/internal/logging"
)

// Event is one broadcast frame. Kind is "alert_created",
// "alert_acknowledged" or "emergency_changed".
type Event struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// Hub manages dashboard WebSocket connections.
type Hub struct {
	mutex       sync.Mutex
	connections map[*websocket.Conn]bool
	logger      *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		connections: make(map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// Add registers a dashboard connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mutex.Lock()
	h.connections[conn] = true
	count := len(h.connections)
	h.mutex.Unlock()
	h.logger.Infof("Dashboard connected, %d active", count)
}

// Remove drops a connection and closes it.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mutex.Lock()
	delete(h.connections, conn)
	h.mutex.Unlock()
	_ = conn.Close()
}

// Broadcast sends an event to every connected dashboard. Connections that
// fail to accept the write are dropped.
func (h *Hub) Broadcast(kind string, payload interface{}) {
	event := Event{Kind: kind, Payload: payload, SentAt: time.Now()}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.connections {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Warnf("Dropping dashboard connection: %v", err)
			delete(h.connections, conn)
			_ = conn.Close()
		}
	}
}

// Count returns the number of active connections.
func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.connections)
}
