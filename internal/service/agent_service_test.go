package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"voice-agent-be/internal/adapter"
	"voice-agent-be/internal/config"
	"voice-agent-be/internal/constant"
	"voice-agent-be/internal/dto"
	"voice-agent-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
)

// The adapter fakes honor the availability flags the way the real adapters
// do, so flipping a flag mid-test exercises the same degradation paths.

type stubTranscription struct {
	flags *adapter.AvailabilityFlags
	text  string
}

func (s *stubTranscription) Attempt(ctx context.Context, audio []byte) store.TranscriptionResult {
	if !s.flags.SttEnabled() {
		return store.TranscriptionResult{Text: constant.SttUnavailableText, Status: store.StatusFallback}
	}
	return store.TranscriptionResult{Text: s.text, Confidence: 0.9, Status: store.StatusSuccess}
}

type stubResponse struct {
	flags     *adapter.AvailabilityFlags
	heuristic *adapter.HeuristicResponder
	reply     string
}

func (s *stubResponse) Attempt(ctx context.Context, text string, history []store.Turn) store.ResponseResult {
	if !s.flags.LlmEnabled() {
		return store.ResponseResult{Text: s.heuristic.Respond(text, history), Status: store.StatusFallbackHeuristic}
	}
	return store.ResponseResult{Text: s.reply, Status: store.StatusSuccess}
}

type stubSynthesis struct {
	flags *adapter.AvailabilityFlags
}

func (s *stubSynthesis) Attempt(ctx context.Context, text string) store.SynthesisResult {
	if !s.flags.TtsEnabled() {
		return store.SynthesisResult{Source: store.AudioSourceBrowser, UseBrowserTTS: true, Status: store.StatusFallbackClientSide}
	}
	return store.SynthesisResult{
		AudioURL: "https://audio.example/reply.mp3",
		VoiceID:  "ken-conversational",
		Source:   store.AudioSourceMurf,
		Status:   store.StatusSuccess,
	}
}

type agentFixture struct {
	agent         IAgentService
	conversations IConversationService
	flags         *adapter.AvailabilityFlags
}

func newAgentFixture(t *testing.T) *agentFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Keys.AssemblyAI = "test-key"
	cfg.Keys.GoogleGemini = "test-key"
	cfg.Keys.Murf = "test-key"
	cfg.Ai.LLMProvider = "gemini"
	cfg.Agent.MaxTextLength = 3000

	flags := adapter.NewAvailabilityFlags()
	conversations := newConversationService()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	agent := NewAgentService(
		conversations,
		&stubTranscription{flags: flags, text: "hello assistant"},
		&stubResponse{flags: flags, heuristic: adapter.NewHeuristicResponder(), reply: "hi human"},
		&stubSynthesis{flags: flags},
		flags,
		cfg,
		NewPublisherService("TEST_EXCHANGES", pubSub),
		nil,
		nopLogger{},
	)
	return &agentFixture{agent: agent, conversations: conversations, flags: flags}
}

func TestPipelineAppendsAlternatingTurns(t *testing.T) {
	fx := newAgentFixture(t)
	const sessionID = "session_10_test"
	const runs = 4

	for i := 0; i < runs; i++ {
		res := fx.agent.ProcessAudioMessage(context.Background(), sessionID, []byte("audio"))
		assert.Equal(t, (i+1)*2, res.TotalMessages)
	}

	history := fx.conversations.History(sessionID)
	assert.Len(t, history, runs*2)
	for i, turn := range history {
		if i%2 == 0 {
			assert.Equal(t, store.RoleUser, turn.Role, "turn %d", i)
		} else {
			assert.Equal(t, store.RoleAssistant, turn.Role, "turn %d", i)
		}
	}
}

func TestPipelineSttDisabled(t *testing.T) {
	fx := newAgentFixture(t)
	fx.flags.Set(adapter.ServiceSTT, false)

	res := fx.agent.ProcessAudioMessage(context.Background(), "session_11_test", []byte("audio"))

	assert.Equal(t, store.StatusFallback, res.ErrorHandling.SttStatus)
	assert.Zero(t, res.TranscriptionConfidence)
	assert.NotEmpty(t, res.UserMessage, "fallback transcript should be a spoken apology")
	assert.NotEmpty(t, res.AssistantResponse, "pipeline must still produce a reply")
	assert.Equal(t, store.StatusSuccess, res.ErrorHandling.LlmStatus)
	assert.Equal(t, store.StatusSuccess, res.ErrorHandling.TtsStatus)
}

func TestPipelineLlmDisabledUsesHeuristic(t *testing.T) {
	fx := newAgentFixture(t)
	fx.flags.Set(adapter.ServiceLLM, false)

	res := fx.agent.ProcessAudioMessage(context.Background(), "session_12_test", []byte("audio"))

	assert.Equal(t, store.StatusFallbackHeuristic, res.ErrorHandling.LlmStatus)
	assert.NotEmpty(t, res.AssistantResponse)
	assert.Equal(t, store.StatusSuccess, res.ErrorHandling.SttStatus)
}

func TestPipelineTtsDisabledSignalsBrowserSpeech(t *testing.T) {
	fx := newAgentFixture(t)
	fx.flags.Set(adapter.ServiceTTS, false)

	res := fx.agent.ProcessAudioMessage(context.Background(), "session_13_test", []byte("audio"))

	assert.Equal(t, store.StatusFallbackClientSide, res.ErrorHandling.TtsStatus)
	assert.Nil(t, res.AudioURL)
	assert.True(t, res.UseBrowserTTS)
	assert.Equal(t, store.StatusSuccess, res.ErrorHandling.SttStatus)
	assert.Equal(t, store.StatusSuccess, res.ErrorHandling.LlmStatus)
}

func TestPipelineRecoversAfterReEnable(t *testing.T) {
	fx := newAgentFixture(t)
	const sessionID = "session_14_test"

	fx.agent.SetAvailability(context.Background(), adapter.ServiceAll, false)
	degraded := fx.agent.ProcessAudioMessage(context.Background(), sessionID, []byte("audio"))
	assert.Equal(t, store.StatusFallback, degraded.ErrorHandling.SttStatus)

	fx.agent.SetAvailability(context.Background(), adapter.ServiceAll, true)
	restored := fx.agent.ProcessAudioMessage(context.Background(), sessionID, []byte("audio"))
	assert.Equal(t, store.StatusSuccess, restored.ErrorHandling.SttStatus)
	assert.Equal(t, store.StatusSuccess, restored.ErrorHandling.LlmStatus)
	assert.Equal(t, store.StatusSuccess, restored.ErrorHandling.TtsStatus)
}

func TestPipelineConcurrentSessionsDoNotInterleave(t *testing.T) {
	fx := newAgentFixture(t)
	const runsPerSession = 10
	sessions := []string{"session_15_a", "session_15_b"}

	var wg sync.WaitGroup
	for _, sessionID := range sessions {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < runsPerSession; i++ {
				fx.agent.ProcessAudioMessage(context.Background(), id, []byte("audio"))
			}
		}(sessionID)
	}
	wg.Wait()

	for _, sessionID := range sessions {
		history := fx.conversations.History(sessionID)
		assert.Len(t, history, runsPerSession*2, "session %s", sessionID)
		for i, turn := range history {
			wantRole := store.RoleUser
			if i%2 == 1 {
				wantRole = store.RoleAssistant
			}
			assert.Equal(t, wantRole, turn.Role, "session %s turn %d", sessionID, i)
		}
	}
}

func TestStreamEmitsOrderedEvents(t *testing.T) {
	fx := newAgentFixture(t)

	var events []any
	fx.agent.StreamAudioMessage(context.Background(), "session_16_test", []byte("audio"), nil, func(payload any) error {
		events = append(events, payload)
		return nil
	})

	var types []string
	var llmEvents []dto.StreamLlmResponseEvent
	for _, e := range events {
		switch v := e.(type) {
		case dto.StreamStatusEvent:
			types = append(types, "status")
		case dto.StreamSessionEvent:
			types = append(types, "session")
		case dto.StreamTranscriptionEvent:
			types = append(types, "transcription")
		case dto.StreamLlmResponseEvent:
			types = append(types, "llm_response")
			llmEvents = append(llmEvents, v)
		case dto.StreamAudioEvent:
			types = append(types, "audio")
		case dto.StreamCompleteEvent:
			types = append(types, "complete")
		default:
			t.Fatalf("unexpected event type %T", e)
		}
	}

	assert.Equal(t, "session", types[1], "a fresh session id should announce creation")
	assert.Equal(t, "transcription", types[3])
	assert.Equal(t, "complete", types[len(types)-1])

	if assert.NotEmpty(t, llmEvents) {
		final := llmEvents[len(llmEvents)-1]
		assert.True(t, final.IsComplete, "last llm_response must carry is_complete")
		assert.Equal(t, "hi human", final.Text)
		for _, e := range llmEvents[:len(llmEvents)-1] {
			assert.False(t, e.IsComplete)
		}
	}

	history := fx.conversations.History("session_16_test")
	assert.Len(t, history, 2, "stream run should record one exchange")
}

func TestStreamStopsWhenClientGone(t *testing.T) {
	fx := newAgentFixture(t)

	emitted := 0
	fx.agent.StreamAudioMessage(context.Background(), "session_17_test", []byte("audio"), nil, func(payload any) error {
		emitted++
		return fmt.Errorf("client closed")
	})

	assert.Equal(t, 1, emitted, "pipeline should stop after the first failed emit")
	assert.Empty(t, fx.conversations.History("session_17_test"), "no turns recorded for an aborted stream")
}

func TestErrorStatusReflectsFlags(t *testing.T) {
	fx := newAgentFixture(t)
	fx.flags.Set(adapter.ServiceLLM, false)

	status := fx.agent.ErrorStatus()
	assert.True(t, status.LlmDisabled)
	assert.False(t, status.LlmAvailable)
	assert.False(t, status.SttDisabled)
	assert.True(t, status.SttAvailable)
	assert.True(t, status.GeminiKeySet)
}

func TestServiceStatusCountsSessions(t *testing.T) {
	fx := newAgentFixture(t)
	fx.agent.ProcessAudioMessage(context.Background(), "session_18_test", []byte("audio"))

	status := fx.agent.ServiceStatus()
	assert.Equal(t, 1, status.ActiveSessions)
	assert.Equal(t, 2, status.TotalMessages)
	assert.Equal(t, "assemblyai", status.Stt.Provider)
	assert.Equal(t, "murf", status.Tts.Provider)
	assert.Equal(t, 3000, status.Tts.MaxTextLength)
}

type panicTranscription struct{}

func (panicTranscription) Attempt(ctx context.Context, audio []byte) store.TranscriptionResult {
	panic("transcription blew up")
}

func newPanickingAgent(t *testing.T) IAgentService {
	t.Helper()

	cfg := &config.Config{}
	cfg.Agent.MaxTextLength = 3000
	flags := adapter.NewAvailabilityFlags()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	return NewAgentService(
		newConversationService(),
		panicTranscription{},
		&stubResponse{flags: flags, heuristic: adapter.NewHeuristicResponder(), reply: "hi human"},
		&stubSynthesis{flags: flags},
		flags,
		cfg,
		NewPublisherService("TEST_EXCHANGES", pubSub),
		nil,
		nopLogger{},
	)
}

func TestPipelinePanicYieldsFatalResponse(t *testing.T) {
	agent := newPanickingAgent(t)

	res := agent.ProcessAudioMessage(context.Background(), "session_20_test", []byte("audio"))

	assert.Equal(t, constant.FatalErrorText, res.AssistantResponse)
	assert.Equal(t, "session_20_test", res.SessionID)
	assert.True(t, res.UseBrowserTTS)
	assert.Equal(t, store.StatusError, res.ErrorHandling.SttStatus)
	assert.Equal(t, store.StatusError, res.ErrorHandling.LlmStatus)
	assert.Equal(t, store.StatusError, res.ErrorHandling.TtsStatus)
}

func TestStreamPanicEndsWithErrorEvent(t *testing.T) {
	agent := newPanickingAgent(t)

	var events []any
	agent.StreamAudioMessage(context.Background(), "session_21_test", []byte("audio"), nil, func(payload any) error {
		events = append(events, payload)
		return nil
	})

	if assert.NotEmpty(t, events) {
		errEvent, ok := events[len(events)-1].(dto.StreamErrorEvent)
		if assert.True(t, ok, "stream must close with an error event, got %T", events[len(events)-1]) {
			assert.Equal(t, constant.StreamUnexpectedErrorText, errEvent.Message)
		}
	}
}

// Guard against the per-session lock map leaking goroutine deadlocks: a
// pipeline run on one session must not block another session's run.
func TestSessionLocksAreIndependent(t *testing.T) {
	fx := newAgentFixture(t)

	done := make(chan struct{})
	go func() {
		fx.agent.ProcessAudioMessage(context.Background(), "session_19_a", []byte("audio"))
		fx.agent.ProcessAudioMessage(context.Background(), "session_19_b", []byte("audio"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline runs on distinct sessions blocked each other")
	}
}
