// Command simulation drives a running voice-agent server through its fallback
// scenarios: disable each upstream provider, post a recorded exchange, and
// verify the reported stage statuses. Run the server first, then:
//
//	go run ./cmd/simulation
package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:8001"

var (
	pass = color.New(color.FgGreen, color.Bold)
	fail = color.New(color.FgRed, color.Bold)
	info = color.New(color.FgCyan)
)

// Simplified DTOs for the script
type chatEnvelope struct {
	Data struct {
		UserMessage       string `json:"user_message"`
		AssistantResponse string `json:"assistant_response"`
		UseBrowserTTS     bool   `json:"use_browser_tts"`
		TotalMessages     int    `json:"total_messages"`
		ErrorHandling     struct {
			SttStatus string `json:"stt_status"`
			LlmStatus string `json:"llm_status"`
			TtsStatus string `json:"tts_status"`
		} `json:"error_handling"`
	} `json:"data"`
}

type scenario struct {
	name      string
	disable   string // service passed to /admin/simulate-error, "" skips the toggle
	wantStt   string
	wantLlm   string
	wantTts   string
}

func main() {
	fmt.Println("=== Voice Agent Fallback Simulation ===")

	if err := waitForHealth(); err != nil {
		log.Fatalf("Server not reachable at %s: %v", baseURL, err)
	}
	pass.Println("Health check OK")

	sessionID := fmt.Sprintf("session_%d_sim", time.Now().Unix())
	info.Printf("Session: %s\n\n", sessionID)

	// Keys are usually absent in a dev run, so provider-enabled stages may
	// legitimately report "error" instead of "success". Only the disabled
	// stage's status is asserted strictly.
	scenarios := []scenario{
		{name: "STT disabled", disable: "stt", wantStt: "fallback"},
		{name: "LLM disabled", disable: "llm", wantLlm: "fallback_heuristic"},
		{name: "TTS disabled", disable: "tts", wantTts: "fallback_client_side"},
		{name: "All disabled", disable: "all", wantStt: "fallback", wantLlm: "fallback_heuristic", wantTts: "fallback_client_side"},
	}

	failures := 0
	for _, sc := range scenarios {
		info.Printf("--- %s ---\n", sc.name)
		if err := simulateError(sc.disable, "disable"); err != nil {
			fail.Printf("FAIL: toggle %s: %v\n", sc.disable, err)
			failures++
			continue
		}

		res, err := postChat(sessionID)
		if err != nil {
			fail.Printf("FAIL: chat: %v\n", err)
			failures++
		} else if ok, detail := check(sc, res); !ok {
			fail.Printf("FAIL: %s\n", detail)
			failures++
		} else {
			pass.Printf("PASS: stt=%s llm=%s tts=%s (%d messages)\n",
				res.Data.ErrorHandling.SttStatus,
				res.Data.ErrorHandling.LlmStatus,
				res.Data.ErrorHandling.TtsStatus,
				res.Data.TotalMessages)
		}

		if err := simulateError(sc.disable, "enable"); err != nil {
			fail.Printf("FAIL: restore %s: %v\n", sc.disable, err)
			failures++
		}
		fmt.Println()
	}

	if failures > 0 {
		fail.Printf("%d scenario(s) failed\n", failures)
		os.Exit(1)
	}
	pass.Println("All scenarios passed")
}

func check(sc scenario, res *chatEnvelope) (bool, string) {
	eh := res.Data.ErrorHandling
	if sc.wantStt != "" && eh.SttStatus != sc.wantStt {
		return false, fmt.Sprintf("stt_status = %q, want %q", eh.SttStatus, sc.wantStt)
	}
	if sc.wantLlm != "" && eh.LlmStatus != sc.wantLlm {
		return false, fmt.Sprintf("llm_status = %q, want %q", eh.LlmStatus, sc.wantLlm)
	}
	if sc.wantTts != "" && eh.TtsStatus != sc.wantTts {
		return false, fmt.Sprintf("tts_status = %q, want %q", eh.TtsStatus, sc.wantTts)
	}
	if res.Data.AssistantResponse == "" {
		return false, "assistant_response is empty, pipeline should always answer"
	}
	return true, ""
}

func waitForHealth() error {
	var lastErr error
	for i := 0; i < 5; i++ {
		resp, err := http.Get(baseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp.Body.Close()
		}
		time.Sleep(time.Second)
	}
	return lastErr
}

func simulateError(service, action string) error {
	url := fmt.Sprintf("%s/admin/simulate-error/%s?action=%s", baseURL, service, action)
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return nil
}

func postChat(sessionID string) (*chatEnvelope, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "probe.wav")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(silentWav()); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/agent/chat/%s", baseURL, sessionID)
	resp, err := http.Post(url, writer.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, raw)
	}

	var envelope chatEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// silentWav builds a minimal valid PCM wav: half a second of silence at
// 16kHz mono, enough for the upload validators and the STT fallback path.
func silentWav() []byte {
	const (
		sampleRate = 16000
		samples    = sampleRate / 2
	)
	dataSize := samples * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}
