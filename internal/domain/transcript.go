package domain

import "time"

// Chunk kinds stored in the vector index.
const (
	ChunkKindTranscript = "transcript" // a bounded span of caption text
	ChunkKindContext    = "context"    // static descriptive chunk injected at ingest
	ChunkKindFull       = "full"       // the whole transcript as one chunk
)

// TranscriptSegment is one caption cue of a video transcript.
type TranscriptSegment struct {
	Text         string  `json:"text"`
	StartTime    string  `json:"start_time"` // MM:SS
	StartSeconds float64 `json:"start_seconds,omitempty"`
	Link         string  `json:"link,omitempty"` // deep link with &t=<sec>s anchor
}

// Transcript is the result of fetching captions for a video.
type Transcript struct {
	VideoID  string              `json:"video_id"`
	Language string              `json:"language,omitempty"`
	Segments []TranscriptSegment `json:"segments"`
}

// Chunk is the unit of embedding and retrieval, persisted in pgvector.
type Chunk struct {
	ID           string    `json:"id"            db:"id"`
	VideoID      string    `json:"video_id"      db:"video_id"`
	ChunkIndex   int       `json:"chunk_index"   db:"chunk_index"`
	Kind         string    `json:"kind"          db:"kind"`
	Text         string    `json:"text"          db:"content"`
	StartTime    string    `json:"start_time"    db:"start_time"`
	StartSeconds float64   `json:"start_seconds" db:"start_seconds"`
	Link         string    `json:"link"          db:"link"`
	Vector       []float32 `json:"-"             db:"vector"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
}

// SimilarChunk is returned by semantic search, including similarity score.
type SimilarChunk struct {
	Chunk
	Similarity float64 `json:"similarity"`
}

// Answer is the result of a question against ingested transcripts.
// It is produced per request and never persisted.
type Answer struct {
	Text    string         `json:"answer"`
	Sources []SimilarChunk `json:"sources,omitempty"`
}

// Video records a fetched or ingested video in the relational store.
type Video struct {
	ID           string     `json:"id"            db:"id"` // YouTube video id
	URL          string     `json:"url"           db:"url"`
	SegmentCount int        `json:"segment_count" db:"segment_count"`
	ChunkCount   int        `json:"chunk_count"   db:"chunk_count"`
	IngestedAt   *time.Time `json:"ingested_at"   db:"ingested_at"`
	CreatedAt    time.Time  `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"    db:"updated_at"`
}
