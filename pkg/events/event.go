package events

import "time"

// Event types published on the conversation bus.
const (
	TypeExchangeCompleted   = "CHAT_EXCHANGE_COMPLETED"
	TypeAvailabilityChanged = "SERVICE_AVAILABILITY_CHANGED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_EXCHANGE_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the concrete carrier used by all publishers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewExchangeCompleted reports one finished pipeline run.
func NewExchangeCompleted(sessionID string, sttStatus, llmStatus, ttsStatus string, totalMessages int, durationMs int64) Event {
	return BaseEvent{
		Type: TypeExchangeCompleted,
		Data: map[string]interface{}{
			"session_id":     sessionID,
			"stt_status":     sttStatus,
			"llm_status":     llmStatus,
			"tts_status":     ttsStatus,
			"total_messages": totalMessages,
			"duration_ms":    durationMs,
		},
		OccurredAt: time.Now(),
	}
}

// NewAvailabilityChanged reports an operator toggling a service flag.
func NewAvailabilityChanged(service string, enabled bool) Event {
	return BaseEvent{
		Type: TypeAvailabilityChanged,
		Data: map[string]interface{}{
			"service": service,
			"enabled": enabled,
		},
		OccurredAt: time.Now(),
	}
}
