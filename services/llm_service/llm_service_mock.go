package llm_service

import (
	"context"
)

type MockLLMService struct {
	CallLLMFunc func(ctx context.Context, prompt string, opts CallOptions) (string, error)
}

func (m *MockLLMService) CallLLM(ctx context.Context, prompt string, opts CallOptions) (string, error) {
	if m.CallLLMFunc != nil {
		return m.CallLLMFunc(ctx, prompt, opts)
	}
	return "mock response", nil
}
