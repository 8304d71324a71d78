// Package murf implements the tts.Provider contract against the Murf
// speech generation API. Murf hosts the generated audio and returns a URL.
package murf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-agent-be/pkg/speech/tts"
)

const defaultBaseURL = "https://api.murf.ai/v1"

type Murf struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ tts.Provider = (*Murf)(nil)

func New(apiKey string) *Murf {
	return NewWithClient(apiKey, defaultBaseURL, &http.Client{Timeout: 20 * time.Second})
}

// NewWithClient allows a custom base URL and HTTP client, mainly for tests.
func NewWithClient(apiKey, baseURL string, client *http.Client) *Murf {
	return &Murf{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
	}
}

func (m *Murf) Name() string {
	return "murf"
}

// --- Request/Response structs (Internal to this package) ---

type generateRequest struct {
	VoiceID                 string         `json:"voiceId"`
	Style                   string         `json:"style"`
	Text                    string         `json:"text"`
	Rate                    int            `json:"rate"`
	Pitch                   int            `json:"pitch"`
	SampleRate              int            `json:"sampleRate"`
	Format                  string         `json:"format"`
	ChannelType             string         `json:"channelType"`
	PronunciationDictionary map[string]any `json:"pronunciationDictionary"`
	EncodeAsBase64          bool           `json:"encodeAsBase64"`
	Variation               int            `json:"variation"`
	AudioDuration           int            `json:"audioDuration"`
}

type generateResponse struct {
	AudioFile string `json:"audioFile"`
}

// --- Interface Implementation ---

func (m *Murf) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOptions) (*tts.Synthesis, error) {
	format := opts.Format
	if format == "" {
		format = "MP3"
	}
	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = 48000
	}

	payload := generateRequest{
		VoiceID:                 opts.VoiceID,
		Style:                   opts.Style,
		Text:                    text,
		Rate:                    0,
		Pitch:                   0,
		SampleRate:              sampleRate,
		Format:                  format,
		ChannelType:             "MONO",
		PronunciationDictionary: map[string]any{},
		EncodeAsBase64:          false,
		Variation:               1,
		AudioDuration:           0,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.baseURL+"/speech/generate", bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status error, got status %d. with response body %s", res.StatusCode, string(body))
	}

	var genRes generateResponse
	if err := json.Unmarshal(body, &genRes); err != nil {
		return nil, err
	}
	if genRes.AudioFile == "" {
		return nil, fmt.Errorf("empty audioFile in response")
	}

	return &tts.Synthesis{
		AudioURL: genRes.AudioFile,
		VoiceID:  opts.VoiceID,
	}, nil
}
