package adapter

import "testing"

func TestAvailabilityFlagsDefaultEnabled(t *testing.T) {
	f := NewAvailabilityFlags()
	snap := f.Snapshot()
	if !snap.SttEnabled || !snap.LlmEnabled || !snap.TtsEnabled {
		t.Errorf("Snapshot() = %+v, want every flag enabled at start", snap)
	}
}

func TestAvailabilityFlagsSet(t *testing.T) {
	tests := []struct {
		name     string
		service  string
		enabled  bool
		wantStt  bool
		wantLlm  bool
		wantTts  bool
	}{
		{name: "disable stt", service: ServiceSTT, enabled: false, wantStt: false, wantLlm: true, wantTts: true},
		{name: "disable llm", service: ServiceLLM, enabled: false, wantStt: true, wantLlm: false, wantTts: true},
		{name: "disable tts", service: ServiceTTS, enabled: false, wantStt: true, wantLlm: true, wantTts: false},
		{name: "disable all", service: ServiceAll, enabled: false, wantStt: false, wantLlm: false, wantTts: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewAvailabilityFlags()
			if err := f.Set(tt.service, tt.enabled); err != nil {
				t.Fatalf("Set(%q, %v) returned error: %v", tt.service, tt.enabled, err)
			}
			snap := f.Snapshot()
			if snap.SttEnabled != tt.wantStt || snap.LlmEnabled != tt.wantLlm || snap.TtsEnabled != tt.wantTts {
				t.Errorf("Snapshot() = %+v, want stt=%v llm=%v tts=%v", snap, tt.wantStt, tt.wantLlm, tt.wantTts)
			}
		})
	}
}

func TestAvailabilityFlagsReEnable(t *testing.T) {
	f := NewAvailabilityFlags()
	f.Set(ServiceAll, false)
	f.Set(ServiceAll, true)
	snap := f.Snapshot()
	if !snap.SttEnabled || !snap.LlmEnabled || !snap.TtsEnabled {
		t.Errorf("Snapshot() after re-enable = %+v, want every flag back on", snap)
	}
}

func TestAvailabilityFlagsUnknownService(t *testing.T) {
	f := NewAvailabilityFlags()
	if err := f.Set("smtp", false); err == nil {
		t.Error("Set(\"smtp\") returned nil error, want rejection")
	}
}
