package embedding_service

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

type MockEmbeddingService struct {
	EmbedFunc func(ctx context.Context, text string) (pgvector.Vector, error)
}

func (m *MockEmbeddingService) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return pgvector.NewVector([]float32{0.1, 0.2, 0.3}), nil
}
