package websocket

import (
	"voice-agent-be/internal/pkg/logger"
)

// Hub tracks connected clients and fans broadcast frames out to all of them.
// All client map access happens on the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound frames for every client.
	broadcast chan []byte

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"client_id": client.ID,
				"total":     len(h.clients),
			})

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{
					"client_id": client.ID,
					"total":     len(h.clients),
				})
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				if !client.queueSend(message) {
					// Too slow to drain its buffer, drop it
					delete(h.clients, client)
					client.closeSend()
					h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{
						"client_id": client.ID,
					})
				}
			}
		}
	}
}

// Broadcast queues one frame for every connected client.
func (h *Hub) Broadcast(data []byte) {
	h.broadcast <- data
}
