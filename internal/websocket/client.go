package websocket

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	// Binary audio chunks can be large.
	maxMessageSize = 1024 * 1024
)

const welcomeMessage = "🎙️ Connected to Voice Agent Audio Streaming! Send 'start_recording' to begin."

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	ID string

	// Buffered channel of outbound messages.
	Send chan []byte

	uploadsDir string
	recording  *recording

	sendMu     sync.Mutex
	sendClosed bool
}

// recording accumulates binary audio frames into a single file on disk.
type recording struct {
	file       *os.File
	path       string
	chunks     int
	totalBytes int
}

// queueSend enqueues a frame without blocking. It reports false when the
// buffer is full or the channel is already closed.
func (c *Client) queueSend(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.Send)
	}
}

func (c *Client) reply(message string) {
	c.queueSend([]byte(message))
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.closeRecording()
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		messageType, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ERROR] WebSocket read error for client %s: %v", c.ID, err)
			}
			break
		}
		switch messageType {
		case websocket.TextMessage:
			c.handleCommand(string(data))
		case websocket.BinaryMessage:
			if err := c.handleAudioChunk(data); err != nil {
				log.Printf("[ERROR] Failed to store audio chunk for client %s: %v", c.ID, err)
				return
			}
		}
	}
}

func (c *Client) handleCommand(text string) {
	switch text {
	case "start_recording":
		if c.recording != nil {
			return
		}
		filename := fmt.Sprintf("stream_audio_%s_%d.wav", c.ID, time.Now().Unix())
		c.recording = &recording{path: filepath.Join(c.uploadsDir, filename)}
		c.reply(fmt.Sprintf("🔴 Recording started! Audio will be saved to: %s", filename))

	case "stop_recording":
		if c.recording == nil {
			return
		}
		c.closeRecording()
		c.reply("⏹️ Recording stopped and saved successfully!")

	default:
		c.reply("Echo: " + text)
	}
}

func (c *Client) handleAudioChunk(data []byte) error {
	if c.recording == nil {
		c.reply("⚠️ Audio received but no recording session active. Send 'start_recording' first.")
		return nil
	}

	// The file is created lazily on the first chunk.
	if c.recording.file == nil {
		file, err := os.OpenFile(c.recording.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		c.recording.file = file
	}

	if _, err := c.recording.file.Write(data); err != nil {
		return err
	}
	c.recording.chunks++
	c.recording.totalBytes += len(data)

	if c.recording.chunks%10 == 0 {
		c.reply(fmt.Sprintf("📡 Received %d audio chunks (%d bytes)", c.recording.chunks, c.recording.totalBytes))
	}
	return nil
}

func (c *Client) closeRecording() {
	if c.recording == nil {
		return
	}
	if c.recording.file != nil {
		if err := c.recording.file.Close(); err != nil {
			log.Printf("[ERROR] Failed to close recording file %s: %v", c.recording.path, err)
		}
	}
	c.recording = nil
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
