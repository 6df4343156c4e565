package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/omarazaz1/video-chat-project/internal/adapter/ai"
	"github.com/omarazaz1/video-chat-project/internal/adapter/store"
	"github.com/omarazaz1/video-chat-project/internal/adapter/youtube"
	"github.com/omarazaz1/video-chat-project/internal/handler"
	"github.com/omarazaz1/video-chat-project/internal/mcp"
	"github.com/omarazaz1/video-chat-project/internal/middleware"
	"github.com/omarazaz1/video-chat-project/internal/port"
	"github.com/omarazaz1/video-chat-project/internal/service"
	"github.com/omarazaz1/video-chat-project/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()

	slog.Info("🚀 Starting video chat backend",
		"port", cfg.Port,
		"ai_provider", cfg.AIProvider,
		"top_k", cfg.TopK,
		"mcp_enabled", cfg.MCPEnabled,
	)

	// ── Database ─────────────────────────────────────────────────────────
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	if err := pgStore.EnsureSchema(context.Background(), cfg.EmbeddingDimension); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	vectorStore := store.NewVectorStore(pgStore, cfg.EmbeddingDimension)

	// ── Adapters ─────────────────────────────────────────────────────────
	aiProvider := buildAIProvider(cfg)
	fetcher := buildFetcher(cfg)

	// ── Services ─────────────────────────────────────────────────────────
	transcriptService := service.NewTranscriptService(fetcher, pgStore, cfg.FetchTimeout)
	ragService := service.NewRAGService(aiProvider, vectorStore, pgStore, service.RAGOptions{
		TopK:         cfg.TopK,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	})

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	app.Use(middleware.AuditMiddleware(pgStore))

	// ── Routes ───────────────────────────────────────────────────────────
	// Health check
	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Backend is running",
			"app":     cfg.AppName,
			"version": "1.0.0",
		})
	})

	transcriptHandler := handler.NewTranscriptHandler(transcriptService)
	transcriptHandler.Register(app)

	ragHandler := handler.NewRAGHandler(ragService, transcriptService)
	ragHandler.Register(app)

	videoHandler := handler.NewVideoHandler(pgStore, vectorStore)
	videoHandler.Register(app)

	auditHandler := handler.NewAuditHandler(pgStore)
	auditHandler.Register(app)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer := mcp.NewServer(transcriptService, ragService, cfg.MCPPort)
		go func() {
			if err := mcpServer.Start(); err != nil {
				slog.Error("MCP server failed", "error", err)
			}
		}()
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// buildAIProvider picks the embedding/chat backend from configuration.
func buildAIProvider(cfg *config.Config) port.AIProvider {
	if cfg.AIProvider == "ollama" {
		return ai.NewOllamaProvider(ai.OllamaConfig{
			BaseURL:    cfg.OllamaBaseURL,
			EmbedModel: cfg.OllamaEmbedModel,
			ChatModel:  cfg.OllamaChatModel,
			Token:      cfg.OllamaToken,
		})
	}
	if cfg.OpenAIAPIKey == "" {
		slog.Warn("OPENAI_API_KEY is not set; embedding and chat calls will fail")
	}
	return ai.NewOpenAIProvider(ai.OpenAIConfig{
		BaseURL:    cfg.OpenAIBaseURL,
		APIKey:     cfg.OpenAIAPIKey,
		EmbedModel: cfg.OpenAIEmbedModel,
		ChatModel:  cfg.OpenAIChatModel,
	})
}

// buildFetcher assembles the transcript fetcher chain.
func buildFetcher(cfg *config.Config) port.TranscriptFetcher {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	timedtext := youtube.NewTimedTextFetcher(httpClient, cfg.CaptionLangs)
	ytdlp := youtube.NewYtDlpFetcher(cfg.YtDlpPath, cfg.YtDlpWorkDir, cfg.CaptionLangs)

	if cfg.FetchViaYtDlp {
		return youtube.NewFetcher(ytdlp, timedtext)
	}
	return youtube.NewFetcher(timedtext, ytdlp)
}
