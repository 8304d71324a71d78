// Package stt defines the provider contract for speech-to-text backends.
package stt

import (
	"context"
	"io"
)

// TranscribeOptions controls a single transcription request.
type TranscribeOptions struct {
	// Language hint (e.g. "en"). Empty lets the provider detect.
	Language string

	// Format of the uploaded audio (e.g. "wav", "webm"). Informational for
	// providers that sniff the container themselves.
	Format string
}

// Transcript is the provider-level transcription output.
type Transcript struct {
	Text       string
	Confidence float64
	Duration   float64 // seconds, 0 when the provider does not report it
}

// Provider converts recorded audio into text.
type Provider interface {
	// Name identifies the backend (e.g. "assemblyai").
	Name() string

	// Transcribe uploads the audio and blocks until the provider returns a
	// final transcript or the context expires.
	Transcribe(ctx context.Context, audio io.Reader, opts TranscribeOptions) (*Transcript, error)
}
