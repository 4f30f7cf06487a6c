// Package ws streams live community totals to dashboard clients. The
// channel is broadcast only: clients never send data, their read side
// exists solely to detect closes and answer pings.
package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"pvcommunity/internal/models"
)

// Hub fans updated totals out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	last    []byte
	logger  *zap.Logger
}

// NewHub builds hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// BroadcastTotals serializes the totals once and enqueues them to all
// clients. Slow clients drop the frame rather than block the writer.
func (h *Hub) BroadcastTotals(totals *models.CommunityGesamtwerte) {
	raw, err := json.Marshal(totals)
	if err != nil {
		h.logger.Warn("totals serialization failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.last = raw
	for c := range h.clients {
		c.enqueue(raw)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	// New clients get the most recent snapshot immediately.
	if h.last != nil {
		c.enqueue(h.last)
	}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}
