package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/adapters/llm"
	"github.com/eldanielo/ceassist/adapters/mongo"
	"github.com/eldanielo/ceassist/adapters/storage"
	"github.com/eldanielo/ceassist/adapters/stt"
	"github.com/eldanielo/ceassist/domain/repositories"
	"github.com/eldanielo/ceassist/internal/api"
	"github.com/eldanielo/ceassist/internal/auth"
	"github.com/eldanielo/ceassist/internal/config"
	"github.com/eldanielo/ceassist/internal/websocket"
	"github.com/eldanielo/ceassist/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize adapters
	var recognizer repositories.SpeechRecognizer
	var model repositories.AdvisoryModel
	if cfg.MockServices {
		logger.Warn("Mock speech and advisory services enabled")
		recognizer = stt.NewMockSpeechRecognizer(logger)
		model = llm.NewMockAdvisor()
	} else {
		recognizer = stt.NewGoogleSpeechRecognizer()

		advisor, err := llm.NewGeminiAdvisor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.FactCategories, logger)
		if err != nil {
			logger.Fatal("Failed to create Gemini advisor", zap.Error(err))
		}
		model = advisor
	}

	store, cleanup, err := buildTranscriptStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create transcript store", zap.Error(err))
	}
	defer cleanup()

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.AllowedEmailDomain)

	sessionConfig := usecase.SessionConfig{
		Transcriber: usecase.TranscriberConfig{
			SourceSampleRate: cfg.SourceSampleRate,
			SpeechSampleRate: cfg.SpeechSampleRate,
			Language:         cfg.LanguageCode,
			StreamLimit:      cfg.StreamLimit,
			Diarization:      cfg.Diarization,
		},
		QueueCapacity:     cfg.QueueCapacity,
		SystemInstruction: llm.SystemPrompt,
		Acknowledgment:    llm.Acknowledgment,
	}

	// Initialize WebSocket hub and handler
	hub := websocket.NewHub(logger)
	go hub.Run()
	handler := websocket.NewHandler(hub, recognizer, model, store, sessionConfig, logger)

	// Create Echo instance
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.InitRoutes(e, handler, verifier, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("model", cfg.GeminiModel),
		zap.String("storage", cfg.StorageBackend))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildTranscriptStore wires the configured persistence backend.
func buildTranscriptStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.TranscriptStore, func(), error) {
	switch cfg.StorageBackend {
	case "gcs":
		store, err := storage.NewGCSTranscriptStore(ctx, cfg.GCSBucket, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case "mongo":
		client, err := mongo.NewClient(cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Close(closeCtx)
		}
		return mongo.NewTranscriptRepository(client.Database), cleanup, nil

	default:
		return storage.NewLogTranscriptStore(logger), func() {}, nil
	}
}
