package dto

import (
	"time"

	"voice-agent-be/pkg/store"
)

// ExchangeCompletedMessage is the bus payload emitted after every finished
// pipeline run, consumed by the live monitor feed.
type ExchangeCompletedMessage struct {
	SessionID     string    `json:"session_id"`
	SttStatus     string    `json:"stt_status"`
	LlmStatus     string    `json:"llm_status"`
	TtsStatus     string    `json:"tts_status"`
	TotalMessages int       `json:"total_messages"`
	DurationMs    int64     `json:"duration_ms"`
	CompletedAt   time.Time `json:"completed_at"`
}

// ErrorHandlingStatus names each pipeline stage's outcome for one exchange.
type ErrorHandlingStatus struct {
	SttStatus    string  `json:"stt_status"`
	LlmStatus    string  `json:"llm_status"`
	TtsStatus    string  `json:"tts_status"`
	ErrorMessage *string `json:"error_message"`
}

// ChatExchangeResponse is the full record of one voice exchange: what the
// user said, what the assistant answered, where the audio lives, and how
// each stage fared.
type ChatExchangeResponse struct {
	SessionID               string              `json:"session_id"`
	UserMessage             string              `json:"user_message"`
	AssistantResponse       string              `json:"assistant_response"`
	AudioURL                *string             `json:"audio_url"`
	UseBrowserTTS           bool                `json:"use_browser_tts"`
	AudioSource             string              `json:"audio_source"`
	VoiceUsed               string              `json:"voice_used"`
	TotalMessages           int                 `json:"total_messages"`
	TranscriptionConfidence float64             `json:"transcription_confidence"`
	ErrorHandling           ErrorHandlingStatus `json:"error_handling"`
}

type ChatHistoryResponse struct {
	SessionID    string       `json:"session_id"`
	Messages     []store.Turn `json:"messages"`
	MessageCount int          `json:"message_count"`
}

type DeleteSessionResponse struct {
	SessionID string `json:"session_id"`
	Deleted   bool   `json:"deleted"`
}

type ClearHistoryResponse struct {
	SessionID string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

// Stream event payloads, one struct per event name on the wire. Type carries
// the event name so the client can switch on it.

type StreamStatusEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type StreamSessionEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type StreamTranscriptionEvent struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type StreamLlmResponseEvent struct {
	Type       string `json:"type"`
	Text       string `json:"text"`
	IsComplete bool   `json:"is_complete"`
	IsFallback bool   `json:"is_fallback"`
}

type StreamAudioEvent struct {
	Type          string `json:"type"`
	URL           string `json:"url,omitempty"`
	Source        string `json:"source"`
	UseBrowserTTS bool   `json:"use_browser_tts,omitempty"`
	Text          string `json:"text,omitempty"`
}

type StreamCompleteEvent struct {
	Type         string `json:"type"`
	SessionID    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
	Status       string `json:"status"`
}

type StreamErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
