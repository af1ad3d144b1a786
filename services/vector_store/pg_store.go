package vector_store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentora/ragline/pipeline_type"
	"github.com/pgvector/pgvector-go"
)

// PgStore keeps chunks in Postgres with pgvector embeddings, one logical
// collection per corpus. Distances are cosine (<=> operator), matching the
// score = 1 - distance convention downstream.
type PgStore struct {
	db     *pgxpool.Pool
	cache  *CollectionCache
	logger *slog.Logger
}

func NewPgStore(db *pgxpool.Pool, cache *CollectionCache, logger *slog.Logger) *PgStore {
	if cache == nil {
		cache = NewCollectionCache()
	}
	return &PgStore{db: db, cache: cache, logger: logger}
}

func (s *PgStore) collectionID(ctx context.Context, name string) (string, error) {
	return s.cache.GetOrCreate(ctx, name, func(ctx context.Context, name string) (string, error) {
		// Idempotent get-or-create; concurrent instances converge on one row.
		_, err := s.db.Exec(ctx,
			`INSERT INTO collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
		if err != nil {
			return "", &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
		}

		var id string
		err = s.db.QueryRow(ctx, `SELECT id FROM collections WHERE name = $1`, name).Scan(&id)
		if err != nil {
			return "", &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
		}
		return id, nil
	})
}

func (s *PgStore) Query(ctx context.Context, collection string, embedding pgvector.Vector, topK int, fileIDs []string) (*QueryResult, error) {
	collID, err := s.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	query := `
        SELECT content, file_id, file_name, page, chunk_index, language,
               embedding <=> $1 AS distance
        FROM chunks
        WHERE collection_id = $2`
	args := []interface{}{embedding, collID}

	// File filtering happens in the store so topK is never silently reduced.
	switch len(fileIDs) {
	case 0:
	case 1:
		query += fmt.Sprintf(" AND file_id = $%d", len(args)+1)
		args = append(args, fileIDs[0])
	default:
		query += fmt.Sprintf(" AND file_id = ANY($%d)", len(args)+1)
		args = append(args, fileIDs)
	}

	query += fmt.Sprintf(" ORDER BY distance LIMIT $%d", len(args)+1)
	args = append(args, topK)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
	}
	defer rows.Close()

	result := &QueryResult{}
	for rows.Next() {
		var content string
		var meta pipeline_type.ChunkMetadata
		var distance float64
		if err := rows.Scan(&content, &meta.FileID, &meta.FileName, &meta.Page, &meta.ChunkIndex, &meta.Language, &distance); err != nil {
			return nil, &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
		}
		result.Documents = append(result.Documents, content)
		result.Metadatas = append(result.Metadatas, meta)
		result.Distances = append(result.Distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
	}

	return result, nil
}

func (s *PgStore) Count(ctx context.Context, collection string) (int, error) {
	collID, err := s.collectionID(ctx, collection)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM chunks WHERE collection_id = $1`, collID).Scan(&count)
	if err != nil {
		return 0, &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
	}
	return count, nil
}

func (s *PgStore) ListFiles(ctx context.Context, collection string) ([]pipeline_type.CorpusFile, error) {
	collID, err := s.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT file_id, file_name FROM chunks WHERE collection_id = $1`, collID)
	if err != nil {
		return nil, &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
	}
	defer rows.Close()

	var files []pipeline_type.CorpusFile
	for rows.Next() {
		var f pipeline_type.CorpusFile
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *PgStore) Upsert(ctx context.Context, collection string, chunks []pipeline_type.Chunk, embeddings []pgvector.Vector) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	collID, err := s.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
	}
	defer tx.Rollback(ctx)

	for i, ch := range chunks {
		_, err := tx.Exec(ctx, `
            INSERT INTO chunks (id, collection_id, content, file_id, file_name,
                                page, chunk_index, language, language_confidence,
                                created_at, embedding)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
            ON CONFLICT (id) DO UPDATE
                SET content = EXCLUDED.content, embedding = EXCLUDED.embedding`,
			ch.ID, collID, ch.Content, ch.FileID, ch.FileName,
			ch.Page, ch.ChunkIndex, ch.Language, ch.LanguageConfidence,
			ch.Timestamp, embeddings[i])
		if err != nil {
			return &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
	}

	s.logger.Info("Stored chunks",
		slog.String("collection", collection),
		slog.Int("chunk_count", len(chunks)))
	return nil
}

func (s *PgStore) DeleteFile(ctx context.Context, collection, fileID string) error {
	collID, err := s.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		`DELETE FROM chunks WHERE collection_id = $1 AND file_id = $2`, collID, fileID)
	if err != nil {
		return &pipeline_type.UpstreamError{Op: "vector-store", Err: err}
	}

	s.logger.Info("Deleted document chunks",
		slog.String("collection", collection),
		slog.String("file_id", fileID),
		slog.Int64("chunks_removed", tag.RowsAffected()))
	return nil
}
