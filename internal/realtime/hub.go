package realtime

import (
	"sync"
)

// Client represents a single websocket client connection.
// The actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Channel names group subscribers: every user listens on their own channel
// and stakeholders additionally on their country's channel.
func UserChannel(userID string) string {
	return "user:" + userID
}

func CountryChannel(country string) string {
	return "country:" + country
}

// Hub maintains active connections per channel and broadcasts events.
type Hub struct {
	mu               sync.RWMutex
	channelToClients map[string]map[Client]struct{}
}

var hubInstance *Hub
var once sync.Once

// GetHub returns a singleton hub instance.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = &Hub{
			channelToClients: make(map[string]map[Client]struct{}),
		}
	})
	return hubInstance
}

// Register adds a client under a channel.
func (h *Hub) Register(channel string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.channelToClients[channel]; !ok {
		h.channelToClients[channel] = make(map[Client]struct{})
	}
	h.channelToClients[channel][client] = struct{}{}
}

// Unregister removes a client; if a channel has no more clients, cleans up.
func (h *Hub) Unregister(channel string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.channelToClients[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channelToClients, channel)
		}
	}
}

// Broadcast sends a message to all clients of a channel.
func (h *Hub) Broadcast(channel string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.channelToClients[channel] {
		// a failed write is cleaned up on the handler side
		_ = c.Send(message)
	}
}
