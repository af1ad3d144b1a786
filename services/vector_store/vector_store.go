package vector_store

import (
	"context"

	"github.com/mentora/ragline/pipeline_type"
	"github.com/pgvector/pgvector-go"
)

// QueryResult is the raw nearest-neighbor payload for one retrieval call.
// The three slices are parallel. Empty slices are a valid outcome and must
// be distinguished from an unreachable store, which surfaces as an error.
type QueryResult struct {
	Documents []string
	Metadatas []pipeline_type.ChunkMetadata
	Distances []float64
}

// VectorStore is the retrieval pipeline's view of the similarity store.
// When fileIDs is non-empty the filter must be applied server-side so topK
// is not silently reduced by client-side discarding.
type VectorStore interface {
	Query(ctx context.Context, collection string, embedding pgvector.Vector, topK int, fileIDs []string) (*QueryResult, error)
	Count(ctx context.Context, collection string) (int, error)
	ListFiles(ctx context.Context, collection string) ([]pipeline_type.CorpusFile, error)
	Upsert(ctx context.Context, collection string, chunks []pipeline_type.Chunk, embeddings []pgvector.Vector) error
	DeleteFile(ctx context.Context, collection, fileID string) error
}
