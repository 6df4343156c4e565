package handler

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/omarazaz1/video-chat-project/internal/service"
)

// TranscriptHandler handles transcript fetch requests.
type TranscriptHandler struct {
	transcripts *service.TranscriptService
}

// NewTranscriptHandler creates a new transcript handler.
func NewTranscriptHandler(transcripts *service.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts}
}

// Register sets up transcript routes.
func (h *TranscriptHandler) Register(router fiber.Router) {
	router.Post("/transcript", h.Fetch)
}

// Fetch returns the transcript for a video URL. Fetch failures (bad URL, no
// captions, upstream errors) come back as an error field inside the payload
// so the frontend can show them without treating the request as failed.
func (h *TranscriptHandler) Fetch(c fiber.Ctx) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.URL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url is required"})
	}

	transcript, err := h.transcripts.Fetch(c.Context(), body.URL)
	if err != nil {
		slog.Warn("transcript fetch failed", "url", body.URL, "error", err)
		return c.JSON(fiber.Map{
			"transcript": fiber.Map{"error": "Error fetching transcript: " + err.Error()},
		})
	}

	return c.JSON(fiber.Map{
		"transcript": transcript.Segments,
		"video_id":   transcript.VideoID,
	})
}
