package adapter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"voice-agent-be/internal/constant"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/pkg/speech/stt"
	"voice-agent-be/pkg/store"
)

type transcriptionAdapter struct {
	flags    *AvailabilityFlags
	provider stt.Provider
	timeout  time.Duration
	log      logger.ILogger
}

func NewTranscriptionAdapter(flags *AvailabilityFlags, provider stt.Provider, timeout time.Duration, log logger.ILogger) ITranscriptionAdapter {
	return &transcriptionAdapter{
		flags:    flags,
		provider: provider,
		timeout:  timeout,
		log:      log,
	}
}

func (a *transcriptionAdapter) Attempt(ctx context.Context, audio []byte) store.TranscriptionResult {
	if !a.flags.SttEnabled() {
		a.log.Warn("TranscriptionAdapter", "Provider disabled, returning fallback transcript", nil)
		return store.TranscriptionResult{
			Text:        constant.SttUnavailableText,
			Confidence:  0.0,
			Status:      store.StatusFallback,
			ErrorDetail: "API key missing or disabled",
		}
	}

	if len(audio) == 0 {
		a.log.Warn("TranscriptionAdapter", "Empty audio buffer, returning fallback transcript", nil)
		return store.TranscriptionResult{
			Text:        constant.SttEmptyAudioText,
			Confidence:  0.0,
			Status:      store.StatusFallback,
			ErrorDetail: "empty audio buffer",
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	transcript, err := a.provider.Transcribe(callCtx, bytes.NewReader(audio), stt.TranscribeOptions{})
	if err != nil {
		text := classifyTranscribeError(err)
		a.log.Error("TranscriptionAdapter", "Transcription failed", map[string]interface{}{
			"provider": a.provider.Name(),
			"error":    err.Error(),
		})
		return store.TranscriptionResult{
			Text:        text,
			Confidence:  0.0,
			Status:      store.StatusError,
			ErrorDetail: err.Error(),
		}
	}

	text := strings.TrimSpace(transcript.Text)
	if text == "" {
		a.log.Warn("TranscriptionAdapter", "Empty transcription result", nil)
		return store.TranscriptionResult{
			Text:        constant.SttEmptyAudioText,
			Confidence:  0.0,
			Status:      store.StatusError,
			ErrorDetail: "empty transcription",
		}
	}

	confidence := transcript.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	a.log.Info("TranscriptionAdapter", "Transcription successful", map[string]interface{}{
		"confidence": confidence,
		"length":     len(text),
	})
	return store.TranscriptionResult{
		Text:       text,
		Confidence: confidence,
		Status:     store.StatusSuccess,
	}
}

// classifyTranscribeError picks the spoken line that best matches what went
// wrong. The technical detail stays in the result for logging only.
func classifyTranscribeError(err error) string {
	lower := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(lower, "timeout"),
		strings.Contains(lower, "network"),
		strings.Contains(lower, "connection"):
		return constant.SttNetworkText
	case strings.Contains(lower, "transcription failed"):
		return constant.SttFailedText
	case strings.Contains(lower, "status error"):
		return constant.SttServiceBusyText
	default:
		return constant.SttUnclearText
	}
}
