package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/omarazaz1/video-chat-project/internal/domain"
)

// VectorStore handles pgvector operations over transcript chunks.
type VectorStore struct {
	store     *PostgresStore
	dimension int
}

// NewVectorStore creates a vector store backed by the given Postgres store.
func NewVectorStore(store *PostgresStore, dimension int) *VectorStore {
	return &VectorStore{store: store, dimension: dimension}
}

// ReplaceVideoChunks deletes previous chunks for the video and stores the new
// set in one transaction, so a re-ingest replaces rather than accumulates.
func (v *VectorStore) ReplaceVideoChunks(ctx context.Context, videoID string, chunks []domain.Chunk) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("delete previous chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, video_id, chunk_index, kind, content, start_time, start_seconds, link, vector)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::vector)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			id, videoID, c.ChunkIndex, c.Kind, c.Text,
			c.StartTime, c.StartSeconds, c.Link, vectorToString(c.Vector),
		); err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}

	return tx.Commit()
}

// SearchSimilar performs a cosine similarity search over stored chunks.
// When videoID is non-empty the search is scoped to that video.
func (v *VectorStore) SearchSimilar(ctx context.Context, videoID string, queryVector []float32, limit int) ([]domain.SimilarChunk, error) {
	vectorStr := vectorToString(queryVector)

	query := `SELECT c.id, c.video_id, c.chunk_index, c.kind, c.content, c.start_time, c.start_seconds, c.link, c.created_at,
	                 1 - (c.vector <=> $1::vector) AS similarity
	          FROM chunks c`
	args := []interface{}{vectorStr}
	if videoID != "" {
		query += ` WHERE c.video_id = $2
		           ORDER BY c.vector <=> $1::vector LIMIT $3`
		args = append(args, videoID, limit)
	} else {
		query += ` ORDER BY c.vector <=> $1::vector LIMIT $2`
		args = append(args, limit)
	}

	rows, err := v.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer rows.Close()

	var results []domain.SimilarChunk
	for rows.Next() {
		var sc domain.SimilarChunk
		if err := rows.Scan(
			&sc.ID, &sc.VideoID, &sc.ChunkIndex, &sc.Kind, &sc.Text,
			&sc.StartTime, &sc.StartSeconds, &sc.Link, &sc.CreatedAt, &sc.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scan similar: %w", err)
		}
		results = append(results, sc)
	}
	return results, rows.Err()
}

// DeleteVideoChunks deletes all chunks for a video.
func (v *VectorStore) DeleteVideoChunks(ctx context.Context, videoID string) error {
	_, err := v.store.db.ExecContext(ctx, `DELETE FROM chunks WHERE video_id = $1`, videoID)
	return err
}

// Count reports the number of stored chunks.
func (v *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := v.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// vectorToString converts a float32 slice to pgvector string format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
