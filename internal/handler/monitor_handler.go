package handler

import (
	"voice-agent-be/internal/pkg/logger"
	internalWS "voice-agent-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// MonitorHandler upgrades /ws connections. A connected client receives the
// live pipeline monitor feed broadcast by the hub and can stream recorded
// audio chunks back for inspection.
type MonitorHandler struct {
	hub        *internalWS.Hub
	uploadsDir string
	logger     logger.ILogger
}

func NewMonitorHandler(hub *internalWS.Hub, uploadsDir string, log logger.ILogger) *MonitorHandler {
	return &MonitorHandler{
		hub:        hub,
		uploadsDir: uploadsDir,
		logger:     log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *MonitorHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	clientID := uuid.NewString()
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("MonitorHandler", "Starting WebSocket session", map[string]interface{}{"client_id": clientID})
		internalWS.ServeWs(h.hub, conn, clientID, h.uploadsDir)
		h.logger.Info("MonitorHandler", "WebSocket session ended", map[string]interface{}{"client_id": clientID})
	})(c)
}

// RegisterRoutes registers the websocket route.
func (h *MonitorHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
