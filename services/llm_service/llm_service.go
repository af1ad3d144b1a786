package llm_service

import (
	"context"
	"regexp"
	"strings"

	"github.com/mentora/ragline/pipeline_type"
)

// CallOptions carries per-call generation parameters. History is read-only
// recent conversation turns threaded into the chat payload.
type CallOptions struct {
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	History      []pipeline_type.ChatTurn
}

type LLMService interface {
	CallLLM(ctx context.Context, prompt string, opts CallOptions) (string, error)
}

var reasoningBlockRe = regexp.MustCompile(`(?s)<think(?:ing)?>.*?</think(?:ing)?>`)

// StripReasoning removes delimited reasoning blocks from a model response so
// they never reach the user-visible answer.
func StripReasoning(text string) string {
	return strings.TrimSpace(reasoningBlockRe.ReplaceAllString(text, ""))
}
