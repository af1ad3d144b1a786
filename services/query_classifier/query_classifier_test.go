package query_classifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mentora/ragline/pipeline_type"
	"github.com/mentora/ragline/services/llm_service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func countingMock(calls *int, response string, err error) *llm_service.MockLLMService {
	return &llm_service.MockLLMService{
		CallLLMFunc: func(ctx context.Context, prompt string, opts llm_service.CallOptions) (string, error) {
			*calls++
			if err != nil {
				return "", err
			}
			return response, nil
		},
	}
}

func TestClassify_GreetingFastPath(t *testing.T) {
	calls := 0
	c := New(countingMock(&calls, "", nil), 4, testLogger())

	for _, query := range []string{"hi", "Hello!", "good morning", "thanks"} {
		got := c.Classify(context.Background(), query, true, nil)
		if got.Type != pipeline_type.QueryTypeGreeting {
			t.Errorf("Classify(%q).Type = %s, want GREETING", query, got.Type)
		}
		if got.EstimatedOutputTokens > 50 {
			t.Errorf("Classify(%q) tokens = %d, want <= 50", query, got.EstimatedOutputTokens)
		}
	}
	if calls != 0 {
		t.Errorf("greeting fast path made %d model calls, want 0", calls)
	}
}

func TestClassify_GibberishPreFilter(t *testing.T) {
	calls := 0
	c := New(countingMock(&calls, "", nil), 4, testLogger())

	for _, query := range []string{"aaaaaaa", "!!!???##", "qwrtzpsdfg", "xkcdqrtz"} {
		got := c.Classify(context.Background(), query, true, nil)
		if got.Type != pipeline_type.QueryTypeSimple {
			t.Errorf("Classify(%q).Type = %s, want SIMPLE", query, got.Type)
		}
	}
	if calls != 0 {
		t.Errorf("gibberish pre-filter made %d model calls, want 0", calls)
	}
}

func TestClassify_ModelDelegation(t *testing.T) {
	calls := 0
	reply := `Here you go: {"type": "RAG", "reason": "needs document lookup", "outputTokens": 2500}`
	c := New(countingMock(&calls, reply, nil), 4, testLogger())

	got := c.Classify(context.Background(), "explain the krebs cycle from my biology notes", true, nil)
	if calls != 1 {
		t.Fatalf("expected 1 model call, got %d", calls)
	}
	if got.Type != pipeline_type.QueryTypeRAG {
		t.Errorf("Type = %s, want RAG", got.Type)
	}
	if got.Reason != "needs document lookup" {
		t.Errorf("Reason = %q", got.Reason)
	}
	if got.EstimatedOutputTokens != 2500 {
		t.Errorf("EstimatedOutputTokens = %d, want 2500", got.EstimatedOutputTokens)
	}
}

func TestClassify_InvalidModelReplyDefaultsToRAG(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "No JSON at all", reply: "I think this needs documents."},
		{name: "Unknown type value", reply: `{"type": "BANANA", "reason": "?", "outputTokens": 10}`},
		{name: "Broken JSON", reply: `{"type": "SIMPLE", "reason": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			c := New(countingMock(&calls, tt.reply, nil), 4, testLogger())
			got := c.Classify(context.Background(), "what is the main argument of chapter three", true, nil)
			if got.Type != pipeline_type.QueryTypeRAG {
				t.Errorf("Type = %s, want RAG", got.Type)
			}
		})
	}
}

func TestClassify_ModelFailureFallsBackToRules(t *testing.T) {
	calls := 0
	c := New(countingMock(&calls, "", errors.New("connection refused")), 4, testLogger())

	// ~40 token science question, no fast-path match.
	query := "describe in detail how the electron transport chain generates a proton " +
		"gradient across the inner mitochondrial membrane and how ATP synthase uses it"
	got := c.Classify(context.Background(), query, true, nil)

	if calls != 1 {
		t.Fatalf("expected 1 attempted model call, got %d", calls)
	}
	if got.Type != pipeline_type.QueryTypeRAG {
		t.Errorf("Type = %s, want RAG", got.Type)
	}
	if got.EstimatedOutputTokens != 8000 {
		t.Errorf("EstimatedOutputTokens = %d, want 8000 for a 25-50 token query", got.EstimatedOutputTokens)
	}
}

func TestClassifyByRules_TokenBuckets(t *testing.T) {
	c := New(&llm_service.MockLLMService{}, 4, testLogger())

	tests := []struct {
		name   string
		query  string
		budget int
	}{
		{name: "Short", query: "define osmosis now", budget: 1000},
		{name: "Medium", query: strings.Repeat("word ", 15), budget: 3000},
		{name: "Long", query: strings.Repeat("word ", 35), budget: 8000},
		{name: "Very long", query: strings.Repeat("word ", 80), budget: 15000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.classifyByRules(tt.query)
			if got.EstimatedOutputTokens != tt.budget {
				t.Errorf("budget = %d, want %d", got.EstimatedOutputTokens, tt.budget)
			}
		})
	}
}

func TestIsGibberish(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"aaaaaa", true},
		{"?!?!?!", true},
		{"bcdfghjk", true},
		{"what is a cell", false},
		{"explain dna replication", false},
		{"细胞是什么", false},
	}
	for _, tt := range tests {
		if got := isGibberish(tt.text); got != tt.want {
			t.Errorf("isGibberish(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
