package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/omarazaz1/video-chat-project/internal/domain"
	"github.com/omarazaz1/video-chat-project/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(text, start string, sec float64) domain.TranscriptSegment {
	return domain.TranscriptSegment{
		Text:         text,
		StartTime:    start,
		StartSeconds: sec,
		Link:         "https://www.youtube.com/watch?v=vid&t=0s",
	}
}

func transcriptChunks(chunks []domain.Chunk) []domain.Chunk {
	var out []domain.Chunk
	for _, c := range chunks {
		if c.Kind == domain.ChunkKindTranscript {
			out = append(out, c)
		}
	}
	return out
}

func TestBuildChunksReconstructsText(t *testing.T) {
	segments := []domain.TranscriptSegment{
		seg("the quick brown fox jumps over", "00:00", 0),
		seg("the lazy dog and keeps on", "00:05", 5),
		seg("running through the green field", "00:10", 10),
	}

	// No overlap: concatenating transcript chunks must reproduce the text.
	chunks, err := BuildChunks("vid", segments, 40, 0)
	require.NoError(t, err)

	var parts []string
	for _, c := range transcriptChunks(chunks) {
		parts = append(parts, c.Text)
	}
	joined := strings.Join(parts, " ")

	want := "the quick brown fox jumps over the lazy dog and keeps on running through the green field"
	assert.Equal(t, want, joined)
}

func TestBuildChunksInjectsSyntheticChunks(t *testing.T) {
	chunks, err := BuildChunks("vid", []domain.TranscriptSegment{seg("hello world", "00:00", 0)}, 500, 50)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 3)

	assert.Equal(t, domain.ChunkKindContext, chunks[0].Kind)
	assert.Equal(t, domain.ChunkKindFull, chunks[len(chunks)-1].Kind)
	assert.Equal(t, "hello world", chunks[len(chunks)-1].Text)

	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.NotEmpty(t, c.Text, "chunk %d has empty text", i)
		assert.Equal(t, "vid", c.VideoID)
	}
}

func TestBuildChunksSizeBound(t *testing.T) {
	long := strings.Repeat("word ", 400)
	chunks, err := BuildChunks("vid", []domain.TranscriptSegment{seg(long, "00:00", 0)}, 100, 20)
	require.NoError(t, err)

	for _, c := range transcriptChunks(chunks) {
		// A single word may exceed the limit; these are all 4-char words.
		assert.LessOrEqual(t, len(c.Text), 100, "chunk %q too long", c.Text)
	}
}

func TestBuildChunksOverlap(t *testing.T) {
	long := strings.Repeat("alpha beta gamma delta ", 30)
	chunks, err := BuildChunks("vid", []domain.TranscriptSegment{seg(long, "00:00", 0)}, 80, 20)
	require.NoError(t, err)

	tc := transcriptChunks(chunks)
	require.Greater(t, len(tc), 1)

	// Each chunk after the first starts with the tail of its predecessor.
	for i := 1; i < len(tc); i++ {
		firstWord := strings.Fields(tc[i].Text)[0]
		assert.Contains(t, tc[i-1].Text, firstWord)
	}
}

func TestBuildChunksCarriesTimestampMetadata(t *testing.T) {
	segments := []domain.TranscriptSegment{
		seg("first part of the video", "00:00", 0),
		seg("second part of the video", "01:00", 60),
	}
	chunks, err := BuildChunks("vid", segments, 25, 0)
	require.NoError(t, err)

	tc := transcriptChunks(chunks)
	require.GreaterOrEqual(t, len(tc), 2)
	assert.Equal(t, "00:00", tc[0].StartTime)
	// A chunk starting inside the second segment carries its timestamp.
	last := tc[len(tc)-1]
	assert.Equal(t, "01:00", last.StartTime)
	assert.Equal(t, 60.0, last.StartSeconds)
}

func TestBuildChunksEmptyInput(t *testing.T) {
	tests := []struct {
		name     string
		segments []domain.TranscriptSegment
	}{
		{"nil", nil},
		{"empty", []domain.TranscriptSegment{}},
		{"all blank", []domain.TranscriptSegment{seg("", "00:00", 0), seg("   ", "00:01", 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildChunks("vid", tt.segments, 500, 50)
			if !errors.Is(err, port.ErrEmptyTranscript) {
				t.Errorf("BuildChunks() error = %v, want ErrEmptyTranscript", err)
			}
		})
	}
}
