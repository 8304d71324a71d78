package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"voice-agent-be/internal/constant"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/pkg/llm"
	"voice-agent-be/pkg/store"
)

type responseAdapter struct {
	flags         *AvailabilityFlags
	provider      llm.LLMProvider
	heuristic     *HeuristicResponder
	maxLength     int
	historyWindow int
	timeout       time.Duration
	log           logger.ILogger
}

func NewResponseAdapter(flags *AvailabilityFlags, provider llm.LLMProvider, heuristic *HeuristicResponder, maxLength, historyWindow int, timeout time.Duration, log logger.ILogger) IResponseAdapter {
	return &responseAdapter{
		flags:         flags,
		provider:      provider,
		heuristic:     heuristic,
		maxLength:     maxLength,
		historyWindow: historyWindow,
		timeout:       timeout,
		log:           log,
	}
}

func (a *responseAdapter) Attempt(ctx context.Context, text string, history []store.Turn) store.ResponseResult {
	if !a.flags.LlmEnabled() {
		a.log.Warn("ResponseAdapter", "Provider disabled, using heuristic responder", nil)
		return store.ResponseResult{
			Text:   a.heuristic.Respond(text, history),
			Status: store.StatusFallbackHeuristic,
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := buildPrompt(text, history, a.historyWindow)
	reply, err := a.provider.Generate(callCtx, prompt,
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(300),
	)
	if err != nil {
		a.log.Error("ResponseAdapter", "LLM request failed", map[string]interface{}{
			"error": err.Error(),
		})
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(strings.ToLower(err.Error()), "timeout") {
			return store.ResponseResult{Text: constant.LlmTimeoutText, Status: store.StatusError}
		}
		return store.ResponseResult{Text: constant.LlmFailedText, Status: store.StatusError}
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		a.log.Warn("ResponseAdapter", "Empty LLM response", nil)
		return store.ResponseResult{Text: constant.LlmFailedText, Status: store.StatusError}
	}

	if runes := []rune(reply); len(runes) > a.maxLength {
		reply = string(runes[:a.maxLength])
		a.log.Info("ResponseAdapter", "Reply truncated to length budget", map[string]interface{}{
			"budget": a.maxLength,
		})
	}

	return store.ResponseResult{Text: reply, Status: store.StatusSuccess}
}

// buildPrompt renders the trailing history window plus the new user message
// into a single conversational prompt.
func buildPrompt(text string, history []store.Turn, window int) string {
	if len(history) == 0 {
		return fmt.Sprintf(constant.ChatPromptWithoutHistory, text)
	}

	recent := history
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	lines := make([]string, 0, len(recent))
	for _, turn := range recent {
		if turn.Role == store.RoleUser {
			lines = append(lines, "User: "+turn.Content)
		} else {
			lines = append(lines, "Assistant: "+turn.Content)
		}
	}
	return fmt.Sprintf(constant.ChatPromptWithHistory, strings.Join(lines, "\n"), text)
}
