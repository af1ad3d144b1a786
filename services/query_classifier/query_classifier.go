package query_classifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"unicode"

	"github.com/mentora/ragline/pipeline_type"
	"github.com/mentora/ragline/services/llm_service"
	"github.com/mentora/ragline/services/token_service"
)

// Classifier is the cheap upstream gate deciding whether retrieval runs at
// all. It never returns an error: model failures degrade to a rule-based
// classification so the pipeline can always proceed.
type Classifier struct {
	llm               llm_service.LLMService
	fastPathMaxTokens int
	logger            *slog.Logger
}

func New(llm llm_service.LLMService, fastPathMaxTokens int, logger *slog.Logger) *Classifier {
	if fastPathMaxTokens <= 0 {
		fastPathMaxTokens = 4
	}
	return &Classifier{
		llm:               llm,
		fastPathMaxTokens: fastPathMaxTokens,
		logger:            logger,
	}
}

var greetingPhrases = []string{
	"hi", "hello", "hey", "yo", "hiya", "good morning", "good afternoon",
	"good evening", "how are you", "what's up", "whats up", "sup",
}

var politenessPhrases = []string{
	"thanks", "thank you", "ok", "okay", "bye", "goodbye", "see you",
	"great", "nice", "cool", "got it",
}

const classifyPromptHeader = `Classify the user question for a document Q&A assistant.
Respond with a single JSON object and nothing else:
{"type": "GREETING" | "SIMPLE" | "RAG", "reason": "<short>", "outputTokens": <int>}

GREETING: salutations and small talk.
SIMPLE: general questions answerable without the user's documents.
RAG: questions that need content from the user's uploaded documents.
`

// Classify triages query. Gibberish and short greetings are resolved without
// a model call; everything else is delegated to the model with a rule-based
// fallback when the call fails.
func (c *Classifier) Classify(ctx context.Context, query string, hasDocuments bool, history []pipeline_type.ChatTurn) pipeline_type.ClassificationResult {
	trimmed := strings.TrimSpace(query)
	normalized := strings.ToLower(strings.Trim(trimmed, " .!?,"))

	if isGibberish(normalized) {
		return pipeline_type.ClassificationResult{
			Type:                  pipeline_type.QueryTypeSimple,
			Reason:                "gibberish input",
			EstimatedOutputTokens: 50,
		}
	}

	if token_service.CountTokens(trimmed) <= c.fastPathMaxTokens {
		if matchesAny(normalized, greetingPhrases) || matchesAny(normalized, politenessPhrases) {
			return pipeline_type.ClassificationResult{
				Type:                  pipeline_type.QueryTypeGreeting,
				Reason:                "greeting fast path",
				EstimatedOutputTokens: 50,
			}
		}
	}

	result, err := c.classifyWithModel(ctx, trimmed, hasDocuments, history)
	if err != nil {
		c.logger.Warn("Classifier model call failed, using rule-based fallback",
			slog.String("error", err.Error()))
		return c.classifyByRules(trimmed)
	}
	return result
}

func (c *Classifier) classifyWithModel(ctx context.Context, query string, hasDocuments bool, history []pipeline_type.ChatTurn) (pipeline_type.ClassificationResult, error) {
	var sb strings.Builder
	sb.WriteString(classifyPromptHeader)
	if hasDocuments {
		sb.WriteString("\nThe user has uploaded documents.\n")
	} else {
		sb.WriteString("\nThe user has not uploaded any documents.\n")
	}
	if len(history) > 0 {
		sb.WriteString("\nRecent conversation:\n")
		for _, turn := range history {
			sb.WriteString(turn.Role)
			sb.WriteString(": ")
			sb.WriteString(turn.Content)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)

	raw, err := c.llm.CallLLM(ctx, sb.String(), llm_service.CallOptions{MaxTokens: 120})
	if err != nil {
		return pipeline_type.ClassificationResult{}, err
	}
	return parseClassification(raw), nil
}

// parseClassification locates the first {...} block in a model reply and
// reads it defensively; anything missing or invalid defaults toward RAG so a
// confused classifier can only cost extra retrieval, never a wrong skip.
func parseClassification(raw string) pipeline_type.ClassificationResult {
	result := pipeline_type.ClassificationResult{
		Type:                  pipeline_type.QueryTypeRAG,
		Reason:                "default",
		EstimatedOutputTokens: 3000,
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return result
	}

	var parsed struct {
		Type         string `json:"type"`
		Reason       string `json:"reason"`
		OutputTokens int    `json:"outputTokens"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return result
	}

	switch pipeline_type.QueryType(strings.ToUpper(strings.TrimSpace(parsed.Type))) {
	case pipeline_type.QueryTypeGreeting:
		result.Type = pipeline_type.QueryTypeGreeting
	case pipeline_type.QueryTypeSimple:
		result.Type = pipeline_type.QueryTypeSimple
	case pipeline_type.QueryTypeRAG:
		result.Type = pipeline_type.QueryTypeRAG
	default:
		// keep RAG
	}

	if parsed.Reason != "" {
		result.Reason = parsed.Reason
	}
	if parsed.OutputTokens > 0 {
		result.EstimatedOutputTokens = parsed.OutputTokens
	}
	return result
}

// classifyByRules is the no-model fallback: phrase lists plus a query-length
// heuristic for the output budget.
func (c *Classifier) classifyByRules(query string) pipeline_type.ClassificationResult {
	normalized := strings.ToLower(strings.Trim(query, " .!?,"))

	if matchesAny(normalized, greetingPhrases) || matchesAny(normalized, politenessPhrases) {
		return pipeline_type.ClassificationResult{
			Type:                  pipeline_type.QueryTypeGreeting,
			Reason:                "rule-based greeting",
			EstimatedOutputTokens: 50,
		}
	}

	tokens := token_service.CountTokens(query)
	var budget int
	switch {
	case tokens < 10:
		budget = 1000
	case tokens < 25:
		budget = 3000
	case tokens < 50:
		budget = 8000
	default:
		budget = 15000
	}

	return pipeline_type.ClassificationResult{
		Type:                  pipeline_type.QueryTypeRAG,
		Reason:                "rule-based fallback",
		EstimatedOutputTokens: budget,
	}
}

func matchesAny(normalized string, phrases []string) bool {
	for _, p := range phrases {
		if normalized == p {
			return true
		}
	}
	return false
}

// isGibberish rejects obvious keyboard noise before any model call: a single
// repeated character, all-symbol strings, long consonant runs, or short
// strings with almost no vowels.
func isGibberish(s string) bool {
	if s == "" {
		return true
	}

	letters, vowels, symbols, otherLetters := 0, 0, 0, 0
	distinct := make(map[rune]struct{})
	consonantRun, maxConsonantRun := 0, 0

	for _, r := range s {
		if r == ' ' {
			consonantRun = 0
			continue
		}
		distinct[r] = struct{}{}
		switch {
		case strings.ContainsRune("aeiou", r):
			letters++
			vowels++
			consonantRun = 0
		case r >= 'a' && r <= 'z':
			letters++
			consonantRun++
			if consonantRun > maxConsonantRun {
				maxConsonantRun = consonantRun
			}
		case r >= '0' && r <= '9':
			consonantRun = 0
		case unicode.IsLetter(r):
			// Non-Latin scripts have no vowel-ratio signal; never flag them.
			otherLetters++
			consonantRun = 0
		default:
			symbols++
			consonantRun = 0
		}
	}

	if len(distinct) == 1 && len(s) > 2 {
		return true
	}
	if otherLetters > 0 {
		return false
	}
	if letters == 0 && symbols > 0 {
		return true
	}
	if maxConsonantRun >= 6 {
		return true
	}
	if letters >= 4 && letters <= 20 && float64(vowels)/float64(letters) < 0.15 {
		return true
	}
	return false
}
