package embedding_service

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingService turns text into a fixed-dimension vector. Failures are
// reported as errors; the orchestrator decides how they degrade.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
}
