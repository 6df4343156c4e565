package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/omarazaz1/video-chat-project/internal/adapter/store"
	"github.com/omarazaz1/video-chat-project/internal/port"
)

// VideoHandler exposes the fetch/ingest history kept in the relational store.
type VideoHandler struct {
	store *store.PostgresStore
	index port.VectorIndex
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(pgStore *store.PostgresStore, index port.VectorIndex) *VideoHandler {
	return &VideoHandler{store: pgStore, index: index}
}

// Register sets up video routes.
func (h *VideoHandler) Register(router fiber.Router) {
	videos := router.Group("/videos")
	videos.Get("/", h.List)
	videos.Get("/:id", h.Get)
	videos.Delete("/:id", h.Delete)
}

// List returns all known videos.
func (h *VideoHandler) List(c fiber.Ctx) error {
	videos, err := h.store.ListVideos(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"videos": videos,
		"count":  len(videos),
	})
}

// Get returns one video's history row.
func (h *VideoHandler) Get(c fiber.Ctx) error {
	video, err := h.store.GetVideoByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrVideoNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(video)
}

// Delete removes a video's chunks from the index and its history row.
func (h *VideoHandler) Delete(c fiber.Ctx) error {
	id := c.Params("id")
	if err := h.index.DeleteVideoChunks(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.DeleteVideo(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}
