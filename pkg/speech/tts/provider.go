// Package tts defines a minimal contract for text-to-speech backends.
package tts

import "context"

type SynthesizeOptions struct {
	VoiceID    string
	Style      string
	Format     string
	SampleRate int
}

// Synthesis is the result of a synthesis call. Providers that host the
// generated audio return a URL instead of raw bytes.
type Synthesis struct {
	AudioURL string
	VoiceID  string
}

type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string, opts SynthesizeOptions) (*Synthesis, error)
}
