package handler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/omarazaz1/video-chat-project/internal/adapter/youtube"
	"github.com/omarazaz1/video-chat-project/internal/domain"
	"github.com/omarazaz1/video-chat-project/internal/service"
)

// defaultVideoID keys transcript-body ingests that carry no video id and
// whose segments have no recognizable deep links.
const defaultVideoID = "default"

// RAGHandler handles ingest and ask endpoints.
type RAGHandler struct {
	rag         *service.RAGService
	transcripts *service.TranscriptService
}

// NewRAGHandler creates a new RAG handler.
func NewRAGHandler(rag *service.RAGService, transcripts *service.TranscriptService) *RAGHandler {
	return &RAGHandler{rag: rag, transcripts: transcripts}
}

// Register sets up ingest and ask routes.
func (h *RAGHandler) Register(router fiber.Router) {
	router.Post("/ingest", h.Ingest)
	router.Post("/ask", h.Ask)
}

// Ingest indexes a transcript, given either the transcript body itself or a
// video URL to fetch first.
func (h *RAGHandler) Ingest(c fiber.Ctx) error {
	var body struct {
		URL        string          `json:"url"`
		VideoID    string          `json:"video_id"`
		Transcript json.RawMessage `json:"transcript"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	videoID := body.VideoID
	var segments []domain.TranscriptSegment

	switch {
	case strings.TrimSpace(body.URL) != "":
		transcript, err := h.transcripts.Fetch(c.Context(), body.URL)
		if err != nil {
			if service.IsInputError(err) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		segments = transcript.Segments
		videoID = transcript.VideoID

	case len(body.Transcript) > 0:
		if err := json.Unmarshal(body.Transcript, &segments); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "transcript must be a list"})
		}
		if videoID == "" {
			videoID = videoIDFromSegments(segments)
		}

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "transcript must be a list"})
	}

	count, err := h.rag.Ingest(c.Context(), videoID, segments)
	if err != nil {
		if service.IsInputError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message":  fmt.Sprintf("Transcript ingested! (%d chunks)", count),
		"video_id": videoID,
		"chunks":   count,
	})
}

// Ask answers a question using previously ingested transcripts.
func (h *RAGHandler) Ask(c fiber.Ctx) error {
	var body struct {
		Question string `json:"question"`
		VideoID  string `json:"video_id"`
		TopK     int    `json:"top_k"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question is required"})
	}

	answer, err := h.rag.Ask(c.Context(), body.VideoID, body.Question, body.TopK)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	sources := make([]fiber.Map, len(answer.Sources))
	for i, src := range answer.Sources {
		sources[i] = fiber.Map{
			"text":       src.Text,
			"start_time": src.StartTime,
			"link":       src.Link,
			"kind":       src.Kind,
			"similarity": src.Similarity,
		}
	}

	return c.JSON(fiber.Map{
		"answer":  answer.Text,
		"sources": sources,
	})
}

// videoIDFromSegments recovers the video id from segment deep links when the
// caller posted a raw transcript without one.
func videoIDFromSegments(segments []domain.TranscriptSegment) string {
	for _, seg := range segments {
		if seg.Link == "" {
			continue
		}
		if id, err := youtube.ExtractVideoID(seg.Link); err == nil {
			return id
		}
	}
	return defaultVideoID
}
