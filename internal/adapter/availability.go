package adapter

import (
	"fmt"
	"sync/atomic"
)

// Service names accepted by AvailabilityFlags.Set.
const (
	ServiceSTT = "stt"
	ServiceLLM = "llm"
	ServiceTTS = "tts"
	ServiceAll = "all"
)

// AvailabilityFlags holds one toggle per external provider. All flags start
// enabled and reset on restart. Each adapter consults its flag before calling
// the real provider, which is how simulated outages are driven.
type AvailabilityFlags struct {
	stt atomic.Bool
	llm atomic.Bool
	tts atomic.Bool
}

// FlagsSnapshot is a point-in-time read of every flag.
type FlagsSnapshot struct {
	SttEnabled bool
	LlmEnabled bool
	TtsEnabled bool
}

func NewAvailabilityFlags() *AvailabilityFlags {
	f := &AvailabilityFlags{}
	f.stt.Store(true)
	f.llm.Store(true)
	f.tts.Store(true)
	return f
}

// Set flips one flag, or every flag when service is "all".
func (f *AvailabilityFlags) Set(service string, enabled bool) error {
	switch service {
	case ServiceSTT:
		f.stt.Store(enabled)
	case ServiceLLM:
		f.llm.Store(enabled)
	case ServiceTTS:
		f.tts.Store(enabled)
	case ServiceAll:
		f.stt.Store(enabled)
		f.llm.Store(enabled)
		f.tts.Store(enabled)
	default:
		return fmt.Errorf("unknown service: %s", service)
	}
	return nil
}

func (f *AvailabilityFlags) SttEnabled() bool { return f.stt.Load() }
func (f *AvailabilityFlags) LlmEnabled() bool { return f.llm.Load() }
func (f *AvailabilityFlags) TtsEnabled() bool { return f.tts.Load() }

func (f *AvailabilityFlags) Snapshot() FlagsSnapshot {
	return FlagsSnapshot{
		SttEnabled: f.stt.Load(),
		LlmEnabled: f.llm.Load(),
		TtsEnabled: f.tts.Load(),
	}
}
