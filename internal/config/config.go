package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	Keys  APIKeys
	Ai    AIConfig
	Agent AgentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	UploadsDir         string
}

type APIKeys struct {
	AssemblyAI   string
	GoogleGemini string
	Murf         string
	OpenAI       string
}

type AIConfig struct {
	LLMProvider   string // "gemini", "ollama" or "openai"
	LLMModel      string // e.g. "gemini-1.5-flash", "llama3"
	OllamaBaseURL string
}

// AgentConfig carries the pipeline limits and voice defaults.
type AgentConfig struct {
	MaxTextLength          int // synthesis provider character ceiling
	APITimeoutSeconds      int // response stage
	STTTimeoutSeconds      int // transcription stage
	TTSTimeoutSeconds      int // synthesis stage
	MaxConversationHistory int // turns handed to the response stage
	SessionTTLMinutes      int // 0 or below keeps sessions for the process lifetime
	MaxUploadSizeMB        int
	VoiceID                string
	VoiceStyle             string
	ExchangeTopic          string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8001"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			UploadsDir:         getEnv("UPLOADS_DIR", "./uploads"),
		},
		Keys: APIKeys{
			AssemblyAI:   getEnv("ASSEMBLYAI_API_KEY", ""),
			GoogleGemini: getEnv("GEMINI_API_KEY", ""),
			Murf:         getEnv("MURF_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:      getEnv("LLM_MODEL", "gemini-1.5-flash"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Agent: AgentConfig{
			MaxTextLength:          getEnvAsInt("MAX_TEXT_LENGTH", 3000),
			APITimeoutSeconds:      getEnvAsInt("API_TIMEOUT_SECONDS", 15),
			STTTimeoutSeconds:      getEnvAsInt("STT_TIMEOUT_SECONDS", 30),
			TTSTimeoutSeconds:      getEnvAsInt("TTS_TIMEOUT_SECONDS", 20),
			MaxConversationHistory: getEnvAsInt("MAX_CONVERSATION_HISTORY", 5),
			SessionTTLMinutes:      getEnvAsInt("SESSION_TTL_MINUTES", 60),
			MaxUploadSizeMB:        getEnvAsInt("MAX_UPLOAD_SIZE_MB", 25),
			VoiceID:                getEnv("MURF_VOICE_ID", "en-US-ken"),
			VoiceStyle:             getEnv("MURF_VOICE_STYLE", "Conversational"),
			ExchangeTopic:          getEnv("EXCHANGE_EVENTS_TOPIC", "CHAT_EXCHANGE_EVENTS"),
		},
	}
}

// Warnings reports configuration problems that degrade the pipeline but do not
// prevent startup: missing keys only push the matching stage into fallback.
func (c *Config) Warnings() []string {
	var issues []string
	if c.Keys.AssemblyAI == "" {
		issues = append(issues, "ASSEMBLYAI_API_KEY is not set, transcription will use fallback responses")
	}
	switch c.Ai.LLMProvider {
	case "gemini":
		if c.Keys.GoogleGemini == "" {
			issues = append(issues, "GEMINI_API_KEY is not set, responses will use the heuristic fallback")
		}
	case "openai":
		if c.Keys.OpenAI == "" {
			issues = append(issues, "OPENAI_API_KEY is not set, responses will use the heuristic fallback")
		}
	}
	if c.Keys.Murf == "" {
		issues = append(issues, "MURF_API_KEY is not set, synthesis will fall back to browser TTS")
	}
	if c.Agent.MaxTextLength <= 0 {
		issues = append(issues, fmt.Sprintf("MAX_TEXT_LENGTH %d is invalid, synthesis requests may be rejected upstream", c.Agent.MaxTextLength))
	}
	return issues
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
