package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS collections (
    id   uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
    name text NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS chunks (
    id                  text PRIMARY KEY,
    collection_id       uuid NOT NULL REFERENCES collections(id),
    content             text NOT NULL,
    file_id             text NOT NULL,
    file_name           text NOT NULL,
    page                int  NOT NULL DEFAULT 1,
    chunk_index         int  NOT NULL DEFAULT 0,
    language            text NOT NULL DEFAULT 'en',
    language_confidence float8 NOT NULL DEFAULT 0,
    created_at          timestamptz NOT NULL DEFAULT now(),
    embedding           vector(1536)
);

CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks (collection_id);
CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks (collection_id, file_id);
`

// Connect opens the pool, retrying while the database comes up, and applies
// the schema.
func Connect(databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	var pool *pgxpool.Pool
	var err error
	maxRetries := 10
	retryDelay := 10 * time.Second

	for i := 0; i < maxRetries; i++ {
		cfg, cfgErr := pgxpool.ParseConfig(databaseURL)
		if cfgErr != nil {
			return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", cfgErr)
		}

		pool, err = pgxpool.NewWithConfig(context.Background(), cfg)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				log.Println("Successfully connected to the database")
				break
			}
		}

		log.Printf("Failed to connect to the database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database after %d attempts: %w", maxRetries, err)
	}

	if _, err := pool.Exec(context.Background(), schema); err != nil {
		return nil, fmt.Errorf("unable to apply schema: %w", err)
	}

	return pool, nil
}
