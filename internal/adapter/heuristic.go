package adapter

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"voice-agent-be/internal/constant"
	"voice-agent-be/pkg/store"
)

// heuristicRule pairs a keyword predicate with a response template. Rules are
// evaluated top to bottom and the first match wins; a rule with no keywords
// matches everything, so the catch-all must stay last.
type heuristicRule struct {
	category string
	keywords []string
	respond  func(userName string) string
}

func (r heuristicRule) matches(lowerText string) bool {
	if len(r.keywords) == 0 {
		return true
	}
	for _, kw := range r.keywords {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

var genericFallbackResponses = []string{
	"I'm having trouble connecting to my AI brain right now. Please try again in a moment.",
	"Sorry, I'm experiencing some technical difficulties. Could you repeat that?",
	"I'm having connectivity issues at the moment. Please bear with me and try again.",
	"My AI systems are temporarily unavailable. Please try your question again shortly.",
}

// HeuristicResponder produces canned replies when the language model is
// switched off. It pattern-matches the input against a fixed ordered set of
// categories and personalizes the reply with the user's name when one was
// mentioned earlier in the session.
type HeuristicResponder struct {
	rules []heuristicRule
}

func NewHeuristicResponder() *HeuristicResponder {
	return &HeuristicResponder{
		rules: []heuristicRule{
			{
				category: "greeting",
				keywords: []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"},
				respond: func(userName string) string {
					if userName != "" {
						return fmt.Sprintf(constant.HeuristicGreetingNamedText, userName)
					}
					return constant.HeuristicGreetingText
				},
			},
			{
				category: "identity",
				keywords: []string{"what's your name", "your name", "who are you"},
				respond: func(string) string {
					return constant.HeuristicIdentityText
				},
			},
			{
				category: "recall",
				keywords: []string{"my name", "what's my name", "who am i"},
				respond: func(userName string) string {
					if userName != "" {
						return fmt.Sprintf(constant.HeuristicRecallNamedText, userName)
					}
					return constant.HeuristicRecallText
				},
			},
			{
				category: "gratitude",
				keywords: []string{"thank", "thanks", "appreciate"},
				respond: func(string) string {
					return constant.HeuristicGratitudeText
				},
			},
			{
				category: "question",
				keywords: []string{"what", "how", "why", "when", "where", "?"},
				respond: func(string) string {
					return constant.HeuristicQuestionText
				},
			},
			{
				category: "generic",
				respond: func(string) string {
					return genericFallbackResponses[rand.Intn(len(genericFallbackResponses))]
				},
			},
		},
	}
}

func (h *HeuristicResponder) Respond(text string, history []store.Turn) string {
	lower := strings.ToLower(text)
	userName := userNameFromHistory(history)
	for _, rule := range h.rules {
		if rule.matches(lower) {
			return rule.respond(userName)
		}
	}
	return genericFallbackResponses[rand.Intn(len(genericFallbackResponses))]
}

// userNameFromHistory scans earlier user turns for a self-introduction and
// extracts the first word after it. Only the first introducing turn counts.
func userNameFromHistory(history []store.Turn) string {
	for _, turn := range history {
		if turn.Role != store.RoleUser {
			continue
		}
		content := strings.ToLower(turn.Content)
		if !strings.Contains(content, "my name is") && !strings.Contains(content, "i'm") {
			continue
		}
		for _, marker := range []string{"my name is", "i'm"} {
			idx := strings.Index(content, marker)
			if idx < 0 {
				continue
			}
			fields := strings.Fields(content[idx+len(marker):])
			if len(fields) == 0 {
				continue
			}
			return capitalize(fields[0])
		}
		return ""
	}
	return ""
}

func capitalize(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
