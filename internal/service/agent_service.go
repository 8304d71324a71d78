package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"voice-agent-be/internal/adapter"
	"voice-agent-be/internal/config"
	"voice-agent-be/internal/constant"
	"voice-agent-be/internal/dto"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/pkg/events"
	pktNats "voice-agent-be/pkg/nats"
	"voice-agent-be/pkg/store"
)

// StreamEmit pushes one event to the streaming client. A non-nil error means
// the client is gone and the pipeline should stop emitting.
type StreamEmit func(payload any) error

// IAgentService runs the voice pipeline: transcribe the audio, generate a
// reply from the history, synthesize speech, and record both turns. Stages
// degrade to fallbacks instead of failing, so a response always comes back.
type IAgentService interface {
	ProcessAudioMessage(ctx context.Context, sessionID string, audio []byte) *dto.ChatExchangeResponse

	// StreamAudioMessage runs the same pipeline but emits progress events as
	// each stage completes. uploadErr carries a failed upload read into the
	// event stream instead of aborting the response.
	StreamAudioMessage(ctx context.Context, sessionID string, audio []byte, uploadErr error, emit StreamEmit)

	// SetAvailability flips one provider flag ("stt", "llm", "tts" or "all").
	SetAvailability(ctx context.Context, service string, enabled bool) error

	ErrorStatus() dto.ErrorStatusResponse
	ServiceStatus() dto.ServiceStatusResponse
}

type agentService struct {
	conversations IConversationService
	transcription adapter.ITranscriptionAdapter
	response      adapter.IResponseAdapter
	synthesis     adapter.ISynthesisAdapter
	flags         *adapter.AvailabilityFlags
	cfg           *config.Config

	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher

	sessionLocks sync.Map // session id -> *sync.Mutex
	log          logger.ILogger
}

func NewAgentService(
	conversations IConversationService,
	transcription adapter.ITranscriptionAdapter,
	response adapter.IResponseAdapter,
	synthesis adapter.ISynthesisAdapter,
	flags *adapter.AvailabilityFlags,
	cfg *config.Config,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IAgentService {
	return &agentService{
		conversations:    conversations,
		transcription:    transcription,
		response:         response,
		synthesis:        synthesis,
		flags:            flags,
		cfg:              cfg,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
	}
}

// sessionLock serializes pipeline runs per session so concurrent requests
// for the same conversation cannot interleave their turn appends.
func (s *agentService) sessionLock(sessionID string) *sync.Mutex {
	mu, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *agentService) ProcessAudioMessage(ctx context.Context, sessionID string, audio []byte) (res *dto.ChatExchangeResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("AgentService", "Pipeline panicked", map[string]interface{}{
				"session_id": sessionID,
				"panic":      fmt.Sprint(r),
			})
			res = fatalExchangeResponse(sessionID)
		}
	}()

	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	s.log.Info("AgentService", "Processing audio message", map[string]interface{}{
		"session_id": sessionID,
		"audio_size": len(audio),
	})

	s.conversations.GetOrCreate(sessionID)

	transcription := s.transcription.Attempt(ctx, audio)
	confidence := transcription.Confidence
	s.conversations.AppendTurn(sessionID, store.RoleUser, transcription.Text, &confidence)

	history := s.conversations.History(sessionID)
	response := s.response.Attempt(ctx, transcription.Text, history)
	s.conversations.AppendTurn(sessionID, store.RoleAssistant, response.Text, nil)

	synthesis := s.synthesis.Attempt(ctx, response.Text)

	totalMessages := s.conversations.TurnCount(sessionID)
	s.publishExchange(ctx, sessionID, transcription.Status, response.Status, synthesis.Status, totalMessages, time.Since(start))

	var audioURL *string
	if synthesis.AudioURL != "" {
		audioURL = &synthesis.AudioURL
	}

	return &dto.ChatExchangeResponse{
		SessionID:               sessionID,
		UserMessage:             transcription.Text,
		AssistantResponse:       response.Text,
		AudioURL:                audioURL,
		UseBrowserTTS:           synthesis.UseBrowserTTS,
		AudioSource:             synthesis.Source,
		VoiceUsed:               synthesis.VoiceID,
		TotalMessages:           totalMessages,
		TranscriptionConfidence: transcription.Confidence,
		ErrorHandling: dto.ErrorHandlingStatus{
			SttStatus: transcription.Status,
			LlmStatus: response.Status,
			TtsStatus: synthesis.Status,
		},
	}
}

func (s *agentService) StreamAudioMessage(ctx context.Context, sessionID string, audio []byte, uploadErr error, emit StreamEmit) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("AgentService", "Stream pipeline panicked", map[string]interface{}{
				"session_id": sessionID,
				"panic":      fmt.Sprint(r),
			})
			emit(dto.StreamErrorEvent{Type: "error", Message: constant.StreamUnexpectedErrorText})
		}
	}()

	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()

	if err := emit(dto.StreamStatusEvent{Type: "status", Message: constant.StreamProcessingMessage, Status: "info"}); err != nil {
		return
	}

	_, created := s.conversations.GetOrCreate(sessionID)
	if created {
		if err := emit(dto.StreamSessionEvent{Type: "session", Message: fmt.Sprintf(constant.StreamNewSessionMessage, sessionID)}); err != nil {
			return
		}
	}

	if uploadErr != nil {
		s.log.Error("AgentService", "Failed to read streamed upload", map[string]interface{}{
			"session_id": sessionID,
			"error":      uploadErr.Error(),
		})
		emit(dto.StreamErrorEvent{Type: "error", Message: constant.StreamAudioSaveFailedText})
		return
	}

	if err := emit(dto.StreamStatusEvent{Type: "status", Message: constant.StreamTranscribingMessage, Status: "info"}); err != nil {
		return
	}

	transcription := s.transcription.Attempt(ctx, audio)
	if transcription.Status == store.StatusError {
		emit(dto.StreamErrorEvent{Type: "error", Message: transcription.Text})
		return
	}
	if err := emit(dto.StreamTranscriptionEvent{Type: "transcription", Text: transcription.Text, Confidence: transcription.Confidence}); err != nil {
		return
	}
	confidence := transcription.Confidence
	s.conversations.AppendTurn(sessionID, store.RoleUser, transcription.Text, &confidence)

	if err := emit(dto.StreamStatusEvent{Type: "status", Message: constant.StreamThinkingMessage, Status: "info"}); err != nil {
		return
	}

	history := s.conversations.History(sessionID)
	response := s.response.Attempt(ctx, transcription.Text, history)
	isFallback := response.Status != store.StatusSuccess
	if err := s.streamResponseWords(response.Text, isFallback, emit); err != nil {
		return
	}
	s.conversations.AppendTurn(sessionID, store.RoleAssistant, response.Text, nil)

	if err := emit(dto.StreamStatusEvent{Type: "status", Message: constant.StreamSynthesizingMessage, Status: "info"}); err != nil {
		return
	}

	synthesis := s.synthesis.Attempt(ctx, response.Text)
	var audioEvent dto.StreamAudioEvent
	if synthesis.AudioURL != "" {
		audioEvent = dto.StreamAudioEvent{Type: "audio", URL: synthesis.AudioURL, Source: synthesis.Source}
	} else {
		audioEvent = dto.StreamAudioEvent{Type: "audio", UseBrowserTTS: true, Text: response.Text, Source: "browser"}
	}
	if err := emit(audioEvent); err != nil {
		return
	}

	totalMessages := s.conversations.TurnCount(sessionID)
	s.publishExchange(ctx, sessionID, transcription.Status, response.Status, synthesis.Status, totalMessages, time.Since(start))

	emit(dto.StreamCompleteEvent{Type: "complete", SessionID: sessionID, MessageCount: totalMessages, Status: "success"})
}

// fatalExchangeResponse is the catch-all reply when the pipeline itself blows
// up. The apology is spoken client side so the conversation surface stays up.
func fatalExchangeResponse(sessionID string) *dto.ChatExchangeResponse {
	return &dto.ChatExchangeResponse{
		SessionID:         sessionID,
		AssistantResponse: constant.FatalErrorText,
		UseBrowserTTS:     true,
		AudioSource:       store.AudioSourceBrowser,
		VoiceUsed:         constant.VoiceBrowserFallback,
		ErrorHandling: dto.ErrorHandlingStatus{
			SttStatus: store.StatusError,
			LlmStatus: store.StatusError,
			TtsStatus: store.StatusError,
		},
	}
}

// streamResponseWords drips the reply out in small word groups, re-sending
// the accumulated text each time the way a live transcript grows.
func (s *agentService) streamResponseWords(text string, isFallback bool, emit StreamEmit) error {
	words := strings.Fields(text)
	full := ""
	for i, word := range words {
		full += word + " "
		if i%3 == 0 || i == len(words)-1 {
			event := dto.StreamLlmResponseEvent{
				Type:       "llm_response",
				Text:       strings.TrimSpace(full),
				IsComplete: i == len(words)-1,
				IsFallback: isFallback,
			}
			if err := emit(event); err != nil {
				return err
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
	return nil
}

func (s *agentService) publishExchange(ctx context.Context, sessionID, sttStatus, llmStatus, ttsStatus string, totalMessages int, elapsed time.Duration) {
	msg := dto.ExchangeCompletedMessage{
		SessionID:     sessionID,
		SttStatus:     sttStatus,
		LlmStatus:     llmStatus,
		TtsStatus:     ttsStatus,
		TotalMessages: totalMessages,
		DurationMs:    elapsed.Milliseconds(),
		CompletedAt:   time.Now(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("AgentService", "Failed to marshal exchange message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.log.Warn("AgentService", "Failed to publish exchange message", map[string]interface{}{"error": err.Error()})
	}

	// Mirror to NATS for external consumers, best effort
	if s.eventPublisher != nil {
		evt := events.NewExchangeCompleted(sessionID, sttStatus, llmStatus, ttsStatus, totalMessages, elapsed.Milliseconds())
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("AgentService", "Failed to publish exchange event to NATS", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (s *agentService) SetAvailability(ctx context.Context, service string, enabled bool) error {
	if err := s.flags.Set(service, enabled); err != nil {
		return err
	}
	s.log.Info("AgentService", "Service availability changed", map[string]interface{}{
		"service": service,
		"enabled": enabled,
	})

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewAvailabilityChanged(service, enabled)); err != nil {
			s.log.Warn("AgentService", "Failed to publish availability event to NATS", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (s *agentService) ErrorStatus() dto.ErrorStatusResponse {
	snapshot := s.flags.Snapshot()
	sttKeySet := s.cfg.Keys.AssemblyAI != ""
	llmKeySet := s.llmKeySet()
	ttsKeySet := s.cfg.Keys.Murf != ""

	return dto.ErrorStatusResponse{
		SttDisabled:      !snapshot.SttEnabled,
		LlmDisabled:      !snapshot.LlmEnabled,
		TtsDisabled:      !snapshot.TtsEnabled,
		SttAvailable:     snapshot.SttEnabled && sttKeySet,
		LlmAvailable:     snapshot.LlmEnabled && llmKeySet,
		TtsAvailable:     snapshot.TtsEnabled && ttsKeySet,
		AssemblyaiKeySet: sttKeySet,
		GeminiKeySet:     llmKeySet,
		MurfKeySet:       ttsKeySet,
	}
}

func (s *agentService) ServiceStatus() dto.ServiceStatusResponse {
	snapshot := s.flags.Snapshot()
	sttKeySet := s.cfg.Keys.AssemblyAI != ""
	llmKeySet := s.llmKeySet()
	ttsKeySet := s.cfg.Keys.Murf != ""

	return dto.ServiceStatusResponse{
		Stt: dto.ServiceStatus{
			Service:   "stt",
			Provider:  "assemblyai",
			Available: snapshot.SttEnabled && sttKeySet,
			ApiKeySet: sttKeySet,
			Disabled:  !snapshot.SttEnabled,
		},
		Llm: dto.ServiceStatus{
			Service:   "llm",
			Provider:  s.cfg.Ai.LLMProvider,
			Available: snapshot.LlmEnabled && llmKeySet,
			ApiKeySet: llmKeySet,
			Disabled:  !snapshot.LlmEnabled,
		},
		Tts: dto.ServiceStatus{
			Service:       "tts",
			Provider:      "murf",
			Available:     snapshot.TtsEnabled && ttsKeySet,
			ApiKeySet:     ttsKeySet,
			Disabled:      !snapshot.TtsEnabled,
			MaxTextLength: s.cfg.Agent.MaxTextLength,
		},
		ActiveSessions: s.conversations.ActiveSessions(),
		TotalMessages:  s.conversations.TotalMessages(),
	}
}

// llmKeySet reports whether the configured LLM backend has what it needs.
// Ollama runs locally without a key.
func (s *agentService) llmKeySet() bool {
	switch s.cfg.Ai.LLMProvider {
	case "openai":
		return s.cfg.Keys.OpenAI != ""
	case "ollama":
		return true
	default:
		return s.cfg.Keys.GoogleGemini != ""
	}
}
