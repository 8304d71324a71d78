package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs handles websocket requests from the peer. It blocks until the
// connection is closed.
func ServeWs(hub *Hub, c *websocket.Conn, clientID, uploadsDir string) {
	client := &Client{
		Hub:        hub,
		Conn:       c,
		ID:         clientID,
		Send:       make(chan []byte, 256),
		uploadsDir: uploadsDir,
	}
	client.Hub.register <- client
	client.queueSend([]byte(welcomeMessage))

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
