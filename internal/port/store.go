package port

import (
	"context"

	"github.com/omarazaz1/video-chat-project/internal/domain"
)

// VectorIndex abstracts the persistent similarity index over transcript chunks.
// The production implementation is pgvector; tests substitute an in-memory fake.
type VectorIndex interface {
	// ReplaceVideoChunks atomically deletes previous chunks for the video and
	// stores the new set. Every chunk must carry its embedding vector.
	ReplaceVideoChunks(ctx context.Context, videoID string, chunks []domain.Chunk) error

	// SearchSimilar returns the top-k chunks nearest to the query vector,
	// scoped to a video when videoID is non-empty.
	SearchSimilar(ctx context.Context, videoID string, queryVector []float32, limit int) ([]domain.SimilarChunk, error)

	// DeleteVideoChunks removes all chunks stored for a video.
	DeleteVideoChunks(ctx context.Context, videoID string) error

	// Count reports how many chunks are stored in total.
	Count(ctx context.Context) (int, error)
}
