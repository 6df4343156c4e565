package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omarazaz1/video-chat-project/internal/domain"
	"github.com/omarazaz1/video-chat-project/internal/port"
)

// Sentinel answers returned as degraded results instead of HTTP failures,
// so a caller can tell "nothing ingested" apart from a malformed request.
const (
	NoDataAnswer     = "No transcript data has been ingested yet. Fetch a transcript and ingest it first."
	StoreErrorAnswer = "Error accessing the vector store."
)

const answerSystemPrompt = "You are a helpful assistant that answers questions about a YouTube video. " +
	"Use only the provided transcript excerpts to answer. Each excerpt is tagged with the timestamp " +
	"where it occurs in the video; mention timestamps when they help. " +
	"If the transcript does not contain the answer, say so instead of guessing."

// IngestRecorder records successful ingests in the relational store.
type IngestRecorder interface {
	MarkVideoIngested(ctx context.Context, videoID string, chunkCount int) error
}

// RAGOptions tune chunking and retrieval.
type RAGOptions struct {
	TopK         int
	ChunkSize    int
	ChunkOverlap int
}

// RAGService handles ingestion and retrieval-augmented answering over
// video transcripts.
type RAGService struct {
	ai       port.AIProvider
	index    port.VectorIndex
	recorder IngestRecorder // optional
	opts     RAGOptions
}

// NewRAGService creates a new RAG service. recorder may be nil.
func NewRAGService(ai port.AIProvider, index port.VectorIndex, recorder IngestRecorder, opts RAGOptions) *RAGService {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 500
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}
	return &RAGService{ai: ai, index: index, recorder: recorder, opts: opts}
}

// Ingest chunks the transcript, embeds every chunk and replaces the video's
// entries in the index. Returns the number of chunks stored.
func (s *RAGService) Ingest(ctx context.Context, videoID string, segments []domain.TranscriptSegment) (int, error) {
	chunks, err := BuildChunks(videoID, segments, s.opts.ChunkSize, s.opts.ChunkOverlap)
	if err != nil {
		return 0, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.ai.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	if err := s.index.ReplaceVideoChunks(ctx, videoID, chunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	if s.recorder != nil {
		if err := s.recorder.MarkVideoIngested(ctx, videoID, len(chunks)); err != nil {
			slog.Error("failed to record ingest", "video_id", videoID, "error", err)
		}
	}

	slog.Info("transcript ingested", "video_id", videoID, "segments", len(segments), "chunks", len(chunks))
	return len(chunks), nil
}

// Ask embeds the question, retrieves the nearest transcript chunks and asks
// the LLM to answer from them. An empty or unreachable index yields a
// sentinel answer rather than an error.
func (s *RAGService) Ask(ctx context.Context, videoID, question string, topK int) (*domain.Answer, error) {
	if question == "" {
		return nil, port.ErrEmptyQuestion
	}
	if topK <= 0 {
		topK = s.opts.TopK
	}

	queryVector, err := s.ai.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	chunks, err := s.index.SearchSimilar(ctx, videoID, queryVector, topK)
	if err != nil {
		slog.Error("vector search failed", "error", err)
		return &domain.Answer{Text: StoreErrorAnswer}, nil
	}
	if len(chunks) == 0 {
		return &domain.Answer{Text: NoDataAnswer}, nil
	}

	contextParts := make([]string, len(chunks))
	for i, chunk := range chunks {
		if chunk.StartTime != "" {
			contextParts[i] = fmt.Sprintf("[%s] %s", chunk.StartTime, chunk.Text)
		} else {
			contextParts[i] = chunk.Text
		}
	}

	answer, err := s.ai.Chat(ctx, answerSystemPrompt, question, contextParts)
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	return &domain.Answer{Text: answer, Sources: chunks}, nil
}

// IsInputError reports whether err is caused by bad caller input rather than
// a failing dependency, so handlers can pick 4xx over 5xx.
func IsInputError(err error) bool {
	return errors.Is(err, port.ErrInvalidURL) ||
		errors.Is(err, port.ErrEmptyTranscript) ||
		errors.Is(err, port.ErrEmptyQuestion)
}
