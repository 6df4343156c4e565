package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/omarazaz1/video-chat-project/internal/domain"
	"github.com/omarazaz1/video-chat-project/internal/port"
	"github.com/omarazaz1/video-chat-project/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher returns a canned transcript or error.
type fakeFetcher struct {
	transcript *domain.Transcript
	err        error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*domain.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.transcript, nil
}

// fakeAI returns constant embeddings and a canned chat reply.
type fakeAI struct{}

func (fakeAI) ModelName() string { return "fake" }
func (fakeAI) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}
func (f fakeAI) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
func (fakeAI) Chat(_ context.Context, _, _ string, _ []string) (string, error) {
	return "a canned answer", nil
}

// fakeIndex keeps chunks in memory and returns them in insertion order.
type fakeIndex struct {
	chunks map[string][]domain.Chunk
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{chunks: make(map[string][]domain.Chunk)}
}

func (f *fakeIndex) ReplaceVideoChunks(_ context.Context, videoID string, chunks []domain.Chunk) error {
	f.chunks[videoID] = chunks
	return nil
}

func (f *fakeIndex) SearchSimilar(_ context.Context, videoID string, _ []float32, limit int) ([]domain.SimilarChunk, error) {
	var out []domain.SimilarChunk
	for vid, chunks := range f.chunks {
		if videoID != "" && vid != videoID {
			continue
		}
		for _, c := range chunks {
			out = append(out, domain.SimilarChunk{Chunk: c, Similarity: 0.9})
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeIndex) DeleteVideoChunks(_ context.Context, videoID string) error {
	delete(f.chunks, videoID)
	return nil
}

func (f *fakeIndex) Count(_ context.Context) (int, error) {
	n := 0
	for _, c := range f.chunks {
		n += len(c)
	}
	return n, nil
}

func testTranscript() *domain.Transcript {
	return &domain.Transcript{
		VideoID: "vid123",
		Segments: []domain.TranscriptSegment{
			{Text: "the capital of France is Paris", StartTime: "00:00", Link: "https://www.youtube.com/watch?v=vid123&t=0s"},
		},
	}
}

func newTestApp(fetcher port.TranscriptFetcher, index port.VectorIndex) *fiber.App {
	app := fiber.New()

	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Backend is running"})
	})

	transcripts := service.NewTranscriptService(fetcher, nil, 0)
	rag := service.NewRAGService(fakeAI{}, index, nil, service.RAGOptions{TopK: 5, ChunkSize: 500, ChunkOverlap: 50})

	NewTranscriptHandler(transcripts).Register(app)
	NewRAGHandler(rag, transcripts).Register(app)

	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return resp, decoded
}

func TestHealthAlwaysOK(t *testing.T) {
	app := newTestApp(&fakeFetcher{err: port.ErrNoCaptions}, newFakeIndex())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTranscriptFetchOK(t *testing.T) {
	app := newTestApp(&fakeFetcher{transcript: testTranscript()}, newFakeIndex())

	resp, body := postJSON(t, app, "/transcript", map[string]string{"url": "https://youtu.be/vid123"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	segments, ok := body["transcript"].([]interface{})
	require.True(t, ok, "transcript should be a list, got %T", body["transcript"])
	assert.Len(t, segments, 1)
	assert.Equal(t, "vid123", body["video_id"])
}

func TestTranscriptFetchErrorInPayload(t *testing.T) {
	app := newTestApp(&fakeFetcher{err: fmt.Errorf("fetch: %w", port.ErrNoCaptions)}, newFakeIndex())

	resp, body := postJSON(t, app, "/transcript", map[string]string{"url": "https://youtu.be/vid123"})
	// Fetch failures are degraded results, not HTTP failures.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	inner, ok := body["transcript"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, inner["error"], "no captions")
}

func TestTranscriptMissingURL(t *testing.T) {
	app := newTestApp(&fakeFetcher{transcript: testTranscript()}, newFakeIndex())

	resp, _ := postJSON(t, app, "/transcript", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIngestTranscriptBody(t *testing.T) {
	index := newFakeIndex()
	app := newTestApp(&fakeFetcher{transcript: testTranscript()}, index)

	resp, body := postJSON(t, app, "/ingest", map[string]interface{}{
		"transcript": testTranscript().Segments,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], "ingested")
	// Video id recovered from the segment deep link.
	assert.Equal(t, "vid123", body["video_id"])

	n, _ := index.Count(context.Background())
	assert.Greater(t, n, 0)
}

func TestIngestTranscriptNotAList(t *testing.T) {
	app := newTestApp(&fakeFetcher{transcript: testTranscript()}, newFakeIndex())

	resp, body := postJSON(t, app, "/ingest", map[string]interface{}{
		"transcript": "not a list",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "list")
}

func TestIngestEmptyTranscript(t *testing.T) {
	index := newFakeIndex()
	app := newTestApp(&fakeFetcher{transcript: testTranscript()}, index)

	resp, _ := postJSON(t, app, "/ingest", map[string]interface{}{
		"transcript": []map[string]string{{"text": "   "}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	n, _ := index.Count(context.Background())
	assert.Zero(t, n)
}

func TestIngestByURL(t *testing.T) {
	index := newFakeIndex()
	app := newTestApp(&fakeFetcher{transcript: testTranscript()}, index)

	resp, body := postJSON(t, app, "/ingest", map[string]string{"url": "https://youtu.be/vid123"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "vid123", body["video_id"])
}

func TestAskEmptyIndex(t *testing.T) {
	app := newTestApp(&fakeFetcher{transcript: testTranscript()}, newFakeIndex())

	resp, body := postJSON(t, app, "/ask", map[string]string{"question": "what is this about?"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, service.NoDataAnswer, body["answer"])
}

func TestAskAfterIngest(t *testing.T) {
	index := newFakeIndex()
	app := newTestApp(&fakeFetcher{transcript: testTranscript()}, index)

	resp, _ := postJSON(t, app, "/ingest", map[string]interface{}{"transcript": testTranscript().Segments})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := postJSON(t, app, "/ask", map[string]string{"question": "What is the capital of France?"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a canned answer", body["answer"])

	sources, ok := body["sources"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, sources)
}

func TestAskMissingQuestion(t *testing.T) {
	app := newTestApp(&fakeFetcher{transcript: testTranscript()}, newFakeIndex())

	resp, _ := postJSON(t, app, "/ask", map[string]string{"question": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
