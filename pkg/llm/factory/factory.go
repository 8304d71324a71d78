package factory

import (
	"fmt"
	"time"

	"voice-agent-be/pkg/llm"
	"voice-agent-be/pkg/llm/gemini"
	"voice-agent-be/pkg/llm/ollama"
	"voice-agent-be/pkg/llm/openai"
)

// NewLLMProvider builds the configured chat backend.
// timeout bounds one provider call; ollama keeps its own longer budget.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini":
		return gemini.NewGeminiProvider(apiKey, modelName, timeout), nil
	case "openai":
		return openai.NewOpenAIProvider(apiKey, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
