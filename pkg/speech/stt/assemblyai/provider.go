// Package assemblyai implements the stt.Provider contract against the
// AssemblyAI REST API: upload the audio, create a transcript job, poll it.
package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-agent-be/pkg/speech/stt"
)

const defaultBaseURL = "https://api.assemblyai.com/v2"

// pollInterval is how often a pending transcript job is re-checked.
const pollInterval = 1 * time.Second

type AssemblyAI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ stt.Provider = (*AssemblyAI)(nil)

func New(apiKey string) *AssemblyAI {
	return NewWithClient(apiKey, defaultBaseURL, &http.Client{Timeout: 30 * time.Second})
}

// NewWithClient allows a custom base URL and HTTP client, mainly for tests.
func NewWithClient(apiKey, baseURL string, client *http.Client) *AssemblyAI {
	return &AssemblyAI{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
	}
}

func (a *AssemblyAI) Name() string {
	return "assemblyai"
}

// --- Request/Response structs (Internal to this package) ---

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL     string `json:"audio_url"`
	LanguageCode string `json:"language_code,omitempty"`
}

type transcriptResponse struct {
	ID         string   `json:"id"`
	Status     string   `json:"status"` // queued | processing | completed | error
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
	Error      string   `json:"error"`
}

// --- Interface Implementation ---

func (a *AssemblyAI) Transcribe(ctx context.Context, audio io.Reader, opts stt.TranscribeOptions) (*stt.Transcript, error) {
	uploadURL, err := a.upload(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("upload audio: %w", err)
	}

	jobID, err := a.createTranscript(ctx, uploadURL, opts)
	if err != nil {
		return nil, fmt.Errorf("create transcript: %w", err)
	}

	return a.waitForTranscript(ctx, jobID)
}

func (a *AssemblyAI) upload(ctx context.Context, audio io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/upload", audio)
	if err != nil {
		return "", err
	}
	req.Header.Set("authorization", a.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	res, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status error, got status %d. with response body %s", res.StatusCode, string(body))
	}

	var uploadRes uploadResponse
	if err := json.Unmarshal(body, &uploadRes); err != nil {
		return "", err
	}
	if uploadRes.UploadURL == "" {
		return "", fmt.Errorf("empty upload_url in response")
	}
	return uploadRes.UploadURL, nil
}

func (a *AssemblyAI) createTranscript(ctx context.Context, audioURL string, opts stt.TranscribeOptions) (string, error) {
	payload := transcriptRequest{
		AudioURL:     audioURL,
		LanguageCode: opts.Language,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/transcript", bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", err
	}
	req.Header.Set("authorization", a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status error, got status %d. with response body %s", res.StatusCode, string(body))
	}

	var jobRes transcriptResponse
	if err := json.Unmarshal(body, &jobRes); err != nil {
		return "", err
	}
	if jobRes.ID == "" {
		return "", fmt.Errorf("empty transcript id in response")
	}
	return jobRes.ID, nil
}

func (a *AssemblyAI) waitForTranscript(ctx context.Context, jobID string) (*stt.Transcript, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		jobRes, err := a.getTranscript(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch jobRes.Status {
		case "completed":
			confidence := 0.8 // provider omits it for some audio
			if jobRes.Confidence != nil {
				confidence = *jobRes.Confidence
			}
			return &stt.Transcript{
				Text:       jobRes.Text,
				Confidence: confidence,
			}, nil
		case "error":
			return nil, fmt.Errorf("transcription failed: %s", jobRes.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *AssemblyAI) getTranscript(ctx context.Context, jobID string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", a.baseURL+"/transcript/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("authorization", a.apiKey)

	res, err := a.client.Do(req)
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

	var jobRes transcriptResponse
	if err := json.Unmarshal(body, &jobRes); err != nil {
		return nil, err
	}
	return &jobRes, nil
}
