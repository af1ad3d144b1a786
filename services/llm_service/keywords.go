package llm_service

import (
	"context"
	"strings"
)

// NoKeywordsSentinel is what the model answers when it finds nothing worth
// adding to the query.
const NoKeywordsSentinel = "NONE"

const keywordPrompt = `Extract up to 5 search keywords from the question below.
Reply with the keywords separated by commas, nothing else.
If the question has no useful keywords reply with exactly NONE.

Question: `

// ExtractKeywords asks the model for query-expansion keywords. An empty
// slice means no augmentation; failures are returned so the caller can
// decide whether recall without augmentation is acceptable.
func ExtractKeywords(ctx context.Context, llm LLMService, query string) ([]string, error) {
	raw, err := llm.CallLLM(ctx, keywordPrompt+query, CallOptions{MaxTokens: 60})
	if err != nil {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, NoKeywordsSentinel) {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords, nil
}

// KeywordService binds ExtractKeywords to a concrete model.
type KeywordService struct {
	llm LLMService
}

func NewKeywordService(llm LLMService) *KeywordService {
	return &KeywordService{llm: llm}
}

func (s *KeywordService) ExtractKeywords(ctx context.Context, query string) ([]string, error) {
	return ExtractKeywords(ctx, s.llm, query)
}
