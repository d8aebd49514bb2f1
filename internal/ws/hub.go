package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"messenger-service/internal/models"
)

// Hub maintains active websocket connections per user and fans lifecycle
// events out to every connection of the affected users.
type Hub struct {
	userConns map[string]map[*websocket.Conn]bool
	mu        sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		userConns: make(map[string]map[*websocket.Conn]bool),
	}
}

// AddClient registers a websocket connection for a user.
func (h *Hub) AddClient(userUUID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userConns[userUUID]; !ok {
		h.userConns[userUUID] = make(map[*websocket.Conn]bool)
	}
	h.userConns[userUUID][conn] = true
}

// RemoveClient removes a user's websocket connection.
func (h *Hub) RemoveClient(userUUID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.userConns[userUUID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.userConns, userUUID)
		}
	}
}

// NotifyUsers delivers the event to every connection of the given users.
func (h *Hub) NotifyUsers(userUUIDs []string, event models.UserEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return
	}

	for _, userUUID := range userUUIDs {
		h.mu.RLock()
		conns := make([]*websocket.Conn, 0, len(h.userConns[userUUID]))
		for conn := range h.userConns[userUUID] {
			conns = append(conns, conn)
		}
		h.mu.RUnlock()

		for _, conn := range conns {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("websocket write error: %v", err)
				conn.Close()
				h.RemoveClient(userUUID, conn)
			}
		}
	}
}

// ConnCount reports the number of connections registered for a user.
func (h *Hub) ConnCount(userUUID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userUUID])
}
