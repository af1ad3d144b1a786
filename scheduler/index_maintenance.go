package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// IndexMaintainer keeps the ivfflat index on the chunks table sized to the
// corpus. ivfflat wants roughly sqrt(n) lists; as documents are uploaded the
// optimal value drifts, so the maintainer rebuilds when it is off by more
// than half.
type IndexMaintainer struct {
	db       *pgxpool.Pool
	interval time.Duration
	logger   *slog.Logger
}

const minLists = 100

func NewIndexMaintainer(db *pgxpool.Pool, interval time.Duration, logger *slog.Logger) *IndexMaintainer {
	return &IndexMaintainer{db: db, interval: interval, logger: logger}
}

// Start blocks, reindexing on the configured interval until ctx is done.
// Intended to run in its own goroutine.
func (m *IndexMaintainer) Start(ctx context.Context) {
	m.logger.Info("Starting index maintenance", slog.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.ReindexIfNeeded(ctx); err != nil {
				m.logger.Error("Index maintenance failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (m *IndexMaintainer) ReindexIfNeeded(ctx context.Context) error {
	var currentLists int
	err := m.db.QueryRow(ctx, `
        SELECT substring(reloptions[1] from 'lists=(\d+)')::int
        FROM pg_class c
        JOIN pg_index i ON c.oid = i.indexrelid
        WHERE c.relname = 'idx_chunks_embedding'
        AND reloptions IS NOT NULL
    `).Scan(&currentLists)
	if err != nil {
		// Index missing or unreadable; build it.
		return m.rebuild(ctx)
	}

	count, err := m.chunkCount(ctx)
	if err != nil {
		return err
	}

	optimal := optimalLists(count)
	if math.Abs(float64(currentLists-optimal)) > float64(optimal)*0.5 {
		m.logger.Info("Rebuilding vector index",
			slog.Int("current_lists", currentLists),
			slog.Int("optimal_lists", optimal))
		return m.rebuild(ctx)
	}
	return nil
}

func (m *IndexMaintainer) rebuild(ctx context.Context) error {
	count, err := m.chunkCount(ctx)
	if err != nil {
		return err
	}
	lists := optimalLists(count)

	if _, err := m.db.Exec(ctx, "DROP INDEX IF EXISTS idx_chunks_embedding"); err != nil {
		return err
	}
	createIndexSQL := fmt.Sprintf(`
        CREATE INDEX idx_chunks_embedding
        ON chunks
        USING ivfflat (embedding vector_cosine_ops)
        WITH (lists = %d)`, lists)
	if _, err := m.db.Exec(ctx, createIndexSQL); err != nil {
		return err
	}

	m.logger.Info("Vector index rebuilt",
		slog.Int("chunk_count", count),
		slog.Int("list_count", lists))
	return nil
}

func (m *IndexMaintainer) chunkCount(ctx context.Context) (int, error) {
	var count int
	err := m.db.QueryRow(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	return count, err
}

func optimalLists(chunkCount int) int {
	lists := int(math.Sqrt(float64(chunkCount)))
	if lists < minLists {
		lists = minLists
	}
	return lists
}
