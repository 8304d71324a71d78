package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"voice-agent-be/internal/bootstrap"
	"voice-agent-be/internal/config"
	"voice-agent-be/internal/dto"
	"voice-agent-be/internal/pkg/serverutils"
	"voice-agent-be/internal/server"
	"voice-agent-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// newTestApp boots the full container with default config (no provider keys)
// and every upstream disabled, so no request ever leaves the process.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Load()
	container := bootstrap.NewContainer(cfg)
	srv := server.New(cfg, container)
	app := srv.GetApp()

	req := httptest.NewRequest("POST", "/admin/simulate-error/all?action=disable", nil)
	res, err := app.Test(req, -1)
	if err != nil || res.StatusCode != fiber.StatusOK {
		t.Fatalf("failed to disable upstreams: err=%v status=%v", err, res.StatusCode)
	}
	return app
}

func decodeBody[T any](t *testing.T, app *fiber.App, method, url string, body *bytes.Buffer, contentType string) (int, serverutils.BaseResponse[T]) {
	t.Helper()

	httpReq := httptest.NewRequest(method, url, nil)
	if body != nil {
		httpReq = httptest.NewRequest(method, url, body)
		httpReq.Header.Set("Content-Type", contentType)
	}

	res, err := app.Test(httpReq, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer res.Body.Close()

	var envelope serverutils.BaseResponse[T]
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		t.Fatalf("%s %s: failed to decode envelope: %v", method, url, err)
	}
	return res.StatusCode, envelope
}

func audioForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "clip.wav")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("RIFF-fake-audio"))
	writer.Close()
	return &body, writer.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/health", nil)
	res, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	var health dto.HealthResponse
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.NotEmpty(t, health.Version)
}

func TestChatFallbackExchange(t *testing.T) {
	app := newTestApp(t)
	sessionID := fmt.Sprintf("session_%d_it", time.Now().Unix())

	body, contentType := audioForm(t)
	status, envelope := decodeBody[dto.ChatExchangeResponse](t, app, "POST", "/agent/chat/"+sessionID, body, contentType)

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, envelope.Success)

	res := envelope.Data
	assert.Equal(t, sessionID, res.SessionID)
	assert.Equal(t, store.StatusFallback, res.ErrorHandling.SttStatus)
	assert.Equal(t, store.StatusFallbackHeuristic, res.ErrorHandling.LlmStatus)
	assert.Equal(t, store.StatusFallbackClientSide, res.ErrorHandling.TtsStatus)
	assert.Zero(t, res.TranscriptionConfidence)
	assert.NotEmpty(t, res.UserMessage)
	assert.NotEmpty(t, res.AssistantResponse)
	assert.Nil(t, res.AudioURL)
	assert.True(t, res.UseBrowserTTS)
	assert.Equal(t, 2, res.TotalMessages)
}

func TestChatHistoryAccumulates(t *testing.T) {
	app := newTestApp(t)
	sessionID := fmt.Sprintf("session_%d_hist", time.Now().Unix())

	for i := 0; i < 2; i++ {
		body, contentType := audioForm(t)
		status, _ := decodeBody[dto.ChatExchangeResponse](t, app, "POST", "/agent/chat/"+sessionID, body, contentType)
		assert.Equal(t, fiber.StatusOK, status)
	}

	status, envelope := decodeBody[dto.ChatHistoryResponse](t, app, "GET", "/agent/chat/"+sessionID+"/history", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 4, envelope.Data.MessageCount)
	assert.Len(t, envelope.Data.Messages, 4)
	assert.Equal(t, store.RoleUser, envelope.Data.Messages[0].Role)
	assert.Equal(t, store.RoleAssistant, envelope.Data.Messages[1].Role)
}

func TestHistoryForUnseenSessionIsEmpty(t *testing.T) {
	app := newTestApp(t)

	status, envelope := decodeBody[dto.ChatHistoryResponse](t, app, "GET", "/agent/chat/session_unseen_it/history", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0, envelope.Data.MessageCount)
}

func TestInvalidSessionIDRejected(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest("GET", "/agent/chat/a!/history", nil)
	res, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestClearHistoryKeepsSession(t *testing.T) {
	app := newTestApp(t)
	sessionID := fmt.Sprintf("session_%d_clear", time.Now().Unix())

	body, contentType := audioForm(t)
	decodeBody[dto.ChatExchangeResponse](t, app, "POST", "/agent/chat/"+sessionID, body, contentType)

	status, envelope := decodeBody[dto.ClearHistoryResponse](t, app, "DELETE", "/agent/chat/"+sessionID+"/history", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, envelope.Data.Cleared)

	status, history := decodeBody[dto.ChatHistoryResponse](t, app, "GET", "/agent/chat/"+sessionID+"/history", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0, history.Data.MessageCount)
}

func TestDeleteSession(t *testing.T) {
	app := newTestApp(t)
	sessionID := fmt.Sprintf("session_%d_del", time.Now().Unix())

	body, contentType := audioForm(t)
	decodeBody[dto.ChatExchangeResponse](t, app, "POST", "/agent/chat/"+sessionID, body, contentType)

	status, envelope := decodeBody[dto.DeleteSessionResponse](t, app, "DELETE", "/agent/chat/"+sessionID, nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, envelope.Data.Deleted)

	req := httptest.NewRequest("DELETE", "/agent/chat/"+sessionID, nil)
	res, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestChatWithoutSessionIDMintsOne(t *testing.T) {
	app := newTestApp(t)

	body, contentType := audioForm(t)
	status, envelope := decodeBody[dto.ChatExchangeResponse](t, app, "POST", "/agent/chat", body, contentType)

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, envelope.Success)
	assert.Regexp(t, regexp.MustCompile(`^session_\d+_\d{4}$`), envelope.Data.SessionID)
	assert.Equal(t, 2, envelope.Data.TotalMessages)
}

// The browser always uploads the same filename, so simultaneous posts for one
// session must not save over or delete each other's temp file.
func TestConcurrentUploadsSameFilename(t *testing.T) {
	app := newTestApp(t)
	sessionID := fmt.Sprintf("session_%d_race", time.Now().Unix())
	const posts = 8

	var wg sync.WaitGroup
	statuses := make([]int, posts)
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()

			var body bytes.Buffer
			writer := multipart.NewWriter(&body)
			part, err := writer.CreateFormFile("file", "recording.wav")
			if err != nil {
				return
			}
			part.Write([]byte("RIFF-fake-audio"))
			writer.Close()

			req := httptest.NewRequest("POST", "/agent/chat/"+sessionID, &body)
			req.Header.Set("Content-Type", writer.FormDataContentType())
			res, err := app.Test(req, -1)
			if err != nil {
				return
			}
			res.Body.Close()
			statuses[slot] = res.StatusCode
		}(i)
	}
	wg.Wait()

	for i, status := range statuses {
		assert.Equal(t, fiber.StatusOK, status, "request %d", i)
	}

	status, envelope := decodeBody[dto.ChatHistoryResponse](t, app, "GET", "/agent/chat/"+sessionID+"/history", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, posts*2, envelope.Data.MessageCount)
}

func TestUnsupportedAudioExtensionRejected(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "malware.exe")
	part.Write([]byte("not audio"))
	writer.Close()

	req := httptest.NewRequest("POST", "/agent/chat/session_ext_it", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}
