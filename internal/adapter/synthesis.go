package adapter

import (
	"context"
	"strings"
	"time"

	"voice-agent-be/internal/constant"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/pkg/speech/tts"
	"voice-agent-be/pkg/store"
)

type synthesisAdapter struct {
	flags     *AvailabilityFlags
	provider  tts.Provider
	maxLength int
	voiceID   string
	style     string
	timeout   time.Duration
	log       logger.ILogger
}

func NewSynthesisAdapter(flags *AvailabilityFlags, provider tts.Provider, maxLength int, voiceID, style string, timeout time.Duration, log logger.ILogger) ISynthesisAdapter {
	return &synthesisAdapter{
		flags:     flags,
		provider:  provider,
		maxLength: maxLength,
		voiceID:   voiceID,
		style:     style,
		timeout:   timeout,
		log:       log,
	}
}

func (a *synthesisAdapter) Attempt(ctx context.Context, text string) store.SynthesisResult {
	if truncated := truncateForSpeech(text, a.maxLength); truncated != text {
		text = truncated
		a.log.Info("SynthesisAdapter", "Text truncated to fit provider limit", map[string]interface{}{
			"limit": a.maxLength,
		})
	}

	if !a.flags.TtsEnabled() {
		a.log.Warn("SynthesisAdapter", "Provider disabled, falling back to browser speech", nil)
		return browserFallbackResult()
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	synthesis, err := a.provider.Synthesize(callCtx, text, tts.SynthesizeOptions{
		VoiceID: a.voiceID,
		Style:   a.style,
	})
	if err != nil {
		a.log.Error("SynthesisAdapter", "Synthesis failed, falling back to browser speech", map[string]interface{}{
			"provider": a.provider.Name(),
			"error":    err.Error(),
		})
		return browserFallbackResult()
	}

	a.log.Info("SynthesisAdapter", "Synthesis successful", map[string]interface{}{
		"voice": a.voiceID,
	})
	return store.SynthesisResult{
		AudioURL:      synthesis.AudioURL,
		VoiceID:       a.voiceLabel(),
		Source:        store.AudioSourceMurf,
		UseBrowserTTS: false,
		Status:        store.StatusSuccess,
	}
}

// voiceLabel renders the caller-facing voice name, e.g. "en-US-ken" with
// style "Conversational" becomes "ken-conversational".
func (a *synthesisAdapter) voiceLabel() string {
	short := a.voiceID
	if idx := strings.LastIndex(short, "-"); idx >= 0 {
		short = short[idx+1:]
	}
	return strings.ToLower(short) + "-" + strings.ToLower(a.style)
}

func browserFallbackResult() store.SynthesisResult {
	return store.SynthesisResult{
		AudioURL:      "",
		VoiceID:       constant.VoiceBrowserFallback,
		Source:        store.AudioSourceBrowser,
		UseBrowserTTS: true,
		Status:        store.StatusFallbackClientSide,
	}
}

// truncateForSpeech caps text at limit runes, replacing the tail with an
// ellipsis. Text at or under the limit passes through untouched.
func truncateForSpeech(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	// A limit this small leaves no room for the ellipsis.
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
