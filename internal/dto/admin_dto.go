package dto

// ErrorSimulationRequest is assembled from the simulate-error path and query
// parameters before validation.
type ErrorSimulationRequest struct {
	Service string `validate:"required,oneof=stt llm tts all"`
	Action  string `validate:"required,oneof=enable disable"`
}

type ErrorSimulationResponse struct {
	Message      string   `json:"message"`
	ErrorType    string   `json:"error_type"`
	ApisDisabled []string `json:"apis_disabled,omitempty"`
	ApisRestored []string `json:"apis_restored,omitempty"`
}

type ErrorStatusResponse struct {
	SttDisabled      bool `json:"stt_disabled"`
	LlmDisabled      bool `json:"llm_disabled"`
	TtsDisabled      bool `json:"tts_disabled"`
	SttAvailable     bool `json:"stt_available"`
	LlmAvailable     bool `json:"llm_available"`
	TtsAvailable     bool `json:"tts_available"`
	AssemblyaiKeySet bool `json:"assemblyai_key_set"`
	GeminiKeySet     bool `json:"gemini_key_set"`
	MurfKeySet       bool `json:"murf_key_set"`
}

// ServiceStatus describes one provider-backed service in the status report.
// MaxTextLength is populated only for synthesis.
type ServiceStatus struct {
	Service       string `json:"service"`
	Provider      string `json:"provider"`
	Available     bool   `json:"available"`
	ApiKeySet     bool   `json:"api_key_set"`
	Disabled      bool   `json:"disabled"`
	MaxTextLength int    `json:"max_text_length,omitempty"`
}

type ServiceStatusResponse struct {
	Stt            ServiceStatus `json:"stt"`
	Llm            ServiceStatus `json:"llm"`
	Tts            ServiceStatus `json:"tts"`
	ActiveSessions int           `json:"active_sessions"`
	TotalMessages  int           `json:"total_messages"`
}

type HealthResponse struct {
	Status    string                `json:"status"`
	Version   string                `json:"version"`
	Timestamp float64               `json:"timestamp"`
	Services  ServiceStatusResponse `json:"services"`
}
