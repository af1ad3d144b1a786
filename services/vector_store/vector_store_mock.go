package vector_store

import (
	"context"

	"github.com/mentora/ragline/pipeline_type"
	"github.com/pgvector/pgvector-go"
)

type MockVectorStore struct {
	QueryFunc      func(ctx context.Context, collection string, embedding pgvector.Vector, topK int, fileIDs []string) (*QueryResult, error)
	CountFunc      func(ctx context.Context, collection string) (int, error)
	ListFilesFunc  func(ctx context.Context, collection string) ([]pipeline_type.CorpusFile, error)
	UpsertFunc     func(ctx context.Context, collection string, chunks []pipeline_type.Chunk, embeddings []pgvector.Vector) error
	DeleteFileFunc func(ctx context.Context, collection, fileID string) error
}

func (m *MockVectorStore) Query(ctx context.Context, collection string, embedding pgvector.Vector, topK int, fileIDs []string) (*QueryResult, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, collection, embedding, topK, fileIDs)
	}
	return &QueryResult{}, nil
}

func (m *MockVectorStore) Count(ctx context.Context, collection string) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, collection)
	}
	return 0, nil
}

func (m *MockVectorStore) ListFiles(ctx context.Context, collection string) ([]pipeline_type.CorpusFile, error) {
	if m.ListFilesFunc != nil {
		return m.ListFilesFunc(ctx, collection)
	}
	return nil, nil
}

func (m *MockVectorStore) Upsert(ctx context.Context, collection string, chunks []pipeline_type.Chunk, embeddings []pgvector.Vector) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, collection, chunks, embeddings)
	}
	return nil
}

func (m *MockVectorStore) DeleteFile(ctx context.Context, collection, fileID string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, collection, fileID)
	}
	return nil
}
