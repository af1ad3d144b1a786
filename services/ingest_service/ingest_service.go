package ingest_service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mentora/ragline/pipeline_type"
	"github.com/mentora/ragline/services/chunk_service"
	"github.com/mentora/ragline/services/embedding_service"
	"github.com/mentora/ragline/services/extract_service"
	"github.com/mentora/ragline/services/vector_store"
	"github.com/pgvector/pgvector-go"
)

// IngestResult reports what indexing a document produced.
type IngestResult struct {
	FileID         string  `json:"file_id"`
	FileName       string  `json:"file_name"`
	Pages          int     `json:"pages"`
	ChunksIndexed  int     `json:"chunks_indexed"`
	ExtractionTime float64 `json:"extraction_time"`
	EmbeddingTime  float64 `json:"embedding_time"`
}

// Processor runs the ingestion side of the corpus: extract, chunk, embed,
// store. Queries never touch it; it exists so the retrieval pipeline has
// something to retrieve from.
type Processor struct {
	extractor *extract_service.DocumentExtractor
	chunker   *chunk_service.Chunker
	embedder  embedding_service.EmbeddingService
	store     vector_store.VectorStore
	logger    *slog.Logger
}

func NewProcessor(chunker *chunk_service.Chunker, embedder embedding_service.EmbeddingService, store vector_store.VectorStore, logger *slog.Logger) *Processor {
	return &Processor{
		extractor: extract_service.NewDocumentExtractor(logger),
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		logger:    logger,
	}
}

func (p *Processor) ProcessDocument(ctx context.Context, collection, filename string, content []byte) (*IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	extractStart := time.Now()
	var pages []string
	switch ext {
	case ".pdf":
		var err error
		pages, err = p.extractor.ExtractPDFPages(content)
		if err != nil {
			return nil, err
		}
	case ".doc", ".docx":
		text, err := p.extractor.ExtractWordText(content)
		if err != nil {
			return nil, err
		}
		pages = []string{text}
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	extractionTime := time.Since(extractStart).Seconds()

	fileID := uuid.NewString()
	var chunks []pipeline_type.Chunk
	for i, pageText := range pages {
		chunks = append(chunks, p.chunker.CreateChunks(pageText, filename, fileID, i+1)...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document produced no indexable text")
	}

	embedStart := time.Now()
	embeddings := make([]pgvector.Vector, len(chunks))
	for i, ch := range chunks {
		emb, err := p.embedder.Embed(ctx, ch.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %s: %w", ch.ID, err)
		}
		embeddings[i] = emb
	}
	embeddingTime := time.Since(embedStart).Seconds()

	if err := p.store.Upsert(ctx, collection, chunks, embeddings); err != nil {
		return nil, err
	}

	p.logger.Info("Document indexed",
		slog.String("collection", collection),
		slog.String("file_id", fileID),
		slog.String("file_name", filename),
		slog.Int("pages", len(pages)),
		slog.Int("chunks", len(chunks)))

	return &IngestResult{
		FileID:         fileID,
		FileName:       filename,
		Pages:          len(pages),
		ChunksIndexed:  len(chunks),
		ExtractionTime: extractionTime,
		EmbeddingTime:  embeddingTime,
	}, nil
}

// DeleteDocument removes every chunk of a file from the collection.
func (p *Processor) DeleteDocument(ctx context.Context, collection, fileID string) error {
	return p.store.DeleteFile(ctx, collection, fileID)
}
