package embedding_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mentora/ragline/pipeline_type"
	"github.com/pgvector/pgvector-go"
)

const embeddingsURL = "https://api.openai.com/v1/embeddings"

type OpenAIEmbedder struct {
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewOpenAIEmbedder(apiKey, model string, timeout time.Duration, logger *slog.Logger) *OpenAIEmbedder {
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	var zero pgvector.Vector

	if e.apiKey == "" {
		return zero, fmt.Errorf("embedding API key not configured")
	}

	jsonData, err := json.Marshal(embeddingRequest{Input: text, Model: e.model})
	if err != nil {
		return zero, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, embeddingsURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return zero, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return zero, &pipeline_type.UpstreamError{Op: "embedding", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		e.logger.Error("Embedding service returned non-200 status",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", string(body)))
		return zero, &pipeline_type.UpstreamError{
			Op:  "embedding",
			Err: fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var embeddingResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return zero, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(embeddingResp.Data) == 0 {
		return zero, fmt.Errorf("no embedding data received")
	}

	return pgvector.NewVector(embeddingResp.Data[0].Embedding), nil
}
