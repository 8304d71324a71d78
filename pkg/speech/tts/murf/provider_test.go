package murf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voice-agent-be/pkg/speech/tts"
)

func TestSynthesizeSuccess(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/speech/generate" {
			t.Errorf("request path = %q, want /speech/generate", r.URL.Path)
		}
		if got := r.Header.Get("api-key"); got != "test-key" {
			t.Errorf("api-key header = %q, want test-key", got)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"audioFile": "https://murf.example/out.mp3"})
	}))
	defer server.Close()

	provider := NewWithClient("test-key", server.URL, server.Client())
	got, err := provider.Synthesize(context.Background(), "hello world", tts.SynthesizeOptions{
		VoiceID: "en-US-ken",
		Style:   "Conversational",
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if got.AudioURL != "https://murf.example/out.mp3" {
		t.Errorf("AudioURL = %q, want the hosted file URL", got.AudioURL)
	}
	if got.VoiceID != "en-US-ken" {
		t.Errorf("VoiceID = %q, want en-US-ken", got.VoiceID)
	}

	if gotBody["voiceId"] != "en-US-ken" || gotBody["style"] != "Conversational" {
		t.Errorf("request body voice = %v/%v, want en-US-ken/Conversational", gotBody["voiceId"], gotBody["style"])
	}
	if gotBody["format"] != "MP3" {
		t.Errorf("request format = %v, want the MP3 default", gotBody["format"])
	}
	if gotBody["sampleRate"] != float64(48000) {
		t.Errorf("request sampleRate = %v, want the 48000 default", gotBody["sampleRate"])
	}
	if gotBody["channelType"] != "MONO" {
		t.Errorf("request channelType = %v, want MONO", gotBody["channelType"])
	}
}

func TestSynthesizeProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"text too long"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	provider := NewWithClient("test-key", server.URL, server.Client())
	_, err := provider.Synthesize(context.Background(), "hello", tts.SynthesizeOptions{VoiceID: "en-US-ken"})
	if err == nil {
		t.Fatal("Synthesize returned nil error for a rejected request")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error = %v, want it to carry the upstream status", err)
	}
}

func TestSynthesizeEmptyAudioFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	provider := NewWithClient("test-key", server.URL, server.Client())
	_, err := provider.Synthesize(context.Background(), "hello", tts.SynthesizeOptions{VoiceID: "en-US-ken"})
	if err == nil {
		t.Fatal("Synthesize returned nil error for an empty audioFile")
	}
}
