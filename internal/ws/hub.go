// Package ws pushes new chat messages to connected browsers. Clients are
// receive-only; the REST endpoint stays the single write path, the hub
// just saves the client from waiting for its next poll.
package ws

import (
	"encoding/json"
	"log"
	"sync"

	"chathub/pkg/models"
)

type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast fans one message out to every connected client. A client whose
// send buffer is full is dropped rather than allowed to stall the rest.
func (h *Hub) Broadcast(msg models.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws: marshal message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Printf("ws: client %s send buffer full, dropping", c.username)
			h.removeLocked(c)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients; later registrations are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.removeLocked(c)
	}
}

// removeLocked requires h.mu held.
func (h *Hub) removeLocked(c *client) {
	delete(h.clients, c)
	close(c.send)
}
