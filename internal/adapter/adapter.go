// Package adapter wraps the external speech and language providers behind a
// uniform Attempt contract. An Attempt never returns an error: every failure
// mode is folded into the result's status so the conversation pipeline can
// always keep moving with degraded output.
package adapter

import (
	"context"

	"voice-agent-be/pkg/store"
)

type ITranscriptionAdapter interface {
	Attempt(ctx context.Context, audio []byte) store.TranscriptionResult
}

type IResponseAdapter interface {
	Attempt(ctx context.Context, text string, history []store.Turn) store.ResponseResult
}

type ISynthesisAdapter interface {
	Attempt(ctx context.Context, text string) store.SynthesisResult
}
