package controller

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"voice-agent-be/internal/dto"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/internal/pkg/serverutils"
	"voice-agent-be/internal/service"
	"voice-agent-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// sessionIDPattern accepts the opaque tokens the frontend generates
// (session_<ts>_<rand>) plus anything a caller supplies in the same alphabet.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,100}$`)

var errInvalidSessionID = fiber.NewError(fiber.StatusBadRequest,
	"Invalid session id: must be 3-100 characters of letters, digits, '-' or '_'")

var allowedAudioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".webm": true,
}

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ChatStream(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type agentController struct {
	agentService        service.IAgentService
	conversationService service.IConversationService
	uploadsDir          string
	maxUploadBytes      int64
	log                 logger.ILogger
}

func NewAgentController(agentService service.IAgentService, conversationService service.IConversationService, uploadsDir string, maxUploadSizeMB int, log logger.ILogger) IAgentController {
	return &agentController{
		agentService:        agentService,
		conversationService: conversationService,
		uploadsDir:          uploadsDir,
		maxUploadBytes:      int64(maxUploadSizeMB) * 1024 * 1024,
		log:                 log,
	}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent")
	h.Post("/chat", c.Chat)
	h.Post("/chat/:session_id", c.Chat)
	h.Post("/chat/:session_id/stream", c.ChatStream)
	h.Get("/chat/:session_id/history", c.History)
	h.Delete("/chat/:session_id", c.DeleteSession)
	h.Delete("/chat/:session_id/history", c.ClearHistory)
}

func (c *agentController) Chat(ctx *fiber.Ctx) error {
	// A bare /chat post carries no session id; mint one server side so the
	// client can pick it up from the response and keep the conversation going.
	sessionID := ctx.Params("session_id")
	if sessionID == "" {
		sessionID = store.NewSessionID()
	} else if !sessionIDPattern.MatchString(sessionID) {
		return errInvalidSessionID
	}

	audio, err := c.readUpload(ctx, sessionID)
	if err != nil {
		return err
	}

	res := c.agentService.ProcessAudioMessage(ctx.UserContext(), sessionID, audio)
	return ctx.JSON(serverutils.SuccessResponse("Audio message processed", res))
}

func (c *agentController) ChatStream(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return err
	}

	// The multipart body is fully buffered by Fiber, so the upload can be
	// read before the response stream starts. Validation failures stay HTTP
	// errors; a broken file read is reported inside the stream instead.
	audio, uploadErr := c.readUpload(ctx, sessionID)
	if _, ok := uploadErr.(*fiber.Error); ok {
		return uploadErr
	}

	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The writer runs after the handler returns, so the request context
		// is gone by then. A disconnected client surfaces as an emit error,
		// which stops the pipeline.
		c.agentService.StreamAudioMessage(context.Background(), sessionID, audio, uploadErr, func(payload any) error {
			return serverutils.WriteStreamEvent(w, payload)
		})
	}))
	return nil
}

func (c *agentController) History(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return err
	}

	turns := c.conversationService.History(sessionID)
	res := dto.ChatHistoryResponse{
		SessionID:    sessionID,
		Messages:     turns,
		MessageCount: len(turns),
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat history retrieved", res))
}

func (c *agentController) DeleteSession(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return err
	}

	if !c.conversationService.DeleteSession(sessionID) {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	res := dto.DeleteSessionResponse{SessionID: sessionID, Deleted: true}
	return ctx.JSON(serverutils.SuccessResponse("Session deleted", res))
}

func (c *agentController) ClearHistory(ctx *fiber.Ctx) error {
	sessionID, err := sessionIDParam(ctx)
	if err != nil {
		return err
	}

	if !c.conversationService.ClearHistory(sessionID) {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	res := dto.ClearHistoryResponse{SessionID: sessionID, Cleared: true}
	return ctx.JSON(serverutils.SuccessResponse("Session history cleared", res))
}

// readUpload pulls the "file" multipart field, parks it under the uploads dir
// for the request lifetime, and returns its bytes. An absent field is treated
// as an empty recording, which the pipeline answers with its own fallback.
func (c *agentController) readUpload(ctx *fiber.Ctx, sessionID string) ([]byte, error) {
	header, err := ctx.FormFile("file")
	if err != nil {
		c.log.Warn("AgentController", "Chat request without audio file", map[string]interface{}{
			"session_id": sessionID,
		})
		return nil, nil
	}

	if header.Size > c.maxUploadBytes {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("Audio file exceeds the %dMB upload limit", c.maxUploadBytes/(1024*1024)))
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != "" && !allowedAudioExtensions[ext] {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Unsupported audio format: "+ext)
	}

	// The browser sends a fixed filename, so the temp path must carry a
	// per-request component or concurrent uploads for one session collide.
	tempPath := filepath.Join(c.uploadsDir, fmt.Sprintf("%s_%s_%s", sessionID, uuid.NewString(), filepath.Base(header.Filename)))
	if err := ctx.SaveFile(header, tempPath); err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}
	defer os.Remove(tempPath)

	audio, err := os.ReadFile(tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return audio, nil
}

func sessionIDParam(ctx *fiber.Ctx) (string, error) {
	sessionID := ctx.Params("session_id")
	if !sessionIDPattern.MatchString(sessionID) {
		return "", errInvalidSessionID
	}
	return sessionID, nil
}
