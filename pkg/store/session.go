package store

import (
	"fmt"
	"math/rand"
	"time"
)

// Stage outcome codes shared by the pipeline results and the wire DTOs.
const (
	StatusSuccess            = "success"
	StatusError              = "error"
	StatusFallback           = "fallback"
	StatusFallbackHeuristic  = "fallback_heuristic"
	StatusFallbackClientSide = "fallback_client_side"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Audio sources reported to the caller.
const (
	AudioSourceMurf    = "murf_api"
	AudioSourceBrowser = "browser_tts"
)

// Turn is one utterance in a conversation. Immutable once appended;
// slice order is conversation order.
type Turn struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence *float64  `json:"confidence,omitempty"` // user turns only, from transcription
}

// Session represents one ongoing conversation held in memory.
type Session struct {
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	Turns     []Turn    `json:"messages"`
}

func (s *Session) TurnCount() int {
	return len(s.Turns)
}

// NewSessionID builds a server-generated session token.
// Format: session_<unixtime>_<random suffix>.
func NewSessionID() string {
	return fmt.Sprintf("session_%d_%04d", time.Now().Unix(), rand.Intn(10000))
}

// TranscriptionResult is the Transcription stage outcome.
// Confidence is 0.0 whenever Status != StatusSuccess. ErrorDetail is for
// operator logs only and must never reach the caller verbatim.
type TranscriptionResult struct {
	Text        string
	Confidence  float64
	Status      string
	ErrorDetail string
}

// ResponseResult is the Response stage outcome.
type ResponseResult struct {
	Text   string
	Status string
}

// SynthesisResult is the Synthesis stage outcome.
// AudioURL is set only when Status == StatusSuccess.
type SynthesisResult struct {
	AudioURL      string
	VoiceID       string
	Source        string
	UseBrowserTTS bool
	Status        string
}
