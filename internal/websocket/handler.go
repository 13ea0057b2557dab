package websocket

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/domain/repositories"
	"github.com/eldanielo/ceassist/usecase"
)

// Handler upgrades authenticated requests and runs the per-connection
// session pipeline.
type Handler struct {
	hub           *Hub
	recognizer    repositories.SpeechRecognizer
	model         repositories.AdvisoryModel
	store         repositories.TranscriptStore
	sessionConfig usecase.SessionConfig
	logger        *zap.Logger
}

// NewHandler creates the websocket handler with the shared service adapters.
// The adapters are reentrant; everything mutable is created per connection.
func NewHandler(
	hub *Hub,
	recognizer repositories.SpeechRecognizer,
	model repositories.AdvisoryModel,
	store repositories.TranscriptStore,
	sessionConfig usecase.SessionConfig,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		hub:           hub,
		recognizer:    recognizer,
		model:         model,
		store:         store,
		sessionConfig: sessionConfig,
		logger:        logger,
	}
}

// HandleTranscribe serves the audio transcription endpoint for an already
// authenticated identity.
func (h *Handler) HandleTranscribe(c echo.Context, identity entities.Identity) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := newClient(h.hub, conn, identity, h.logger)
	h.hub.register <- client
	go client.writePump()

	go func() {
		defer func() {
			h.hub.unregister <- client
		}()

		session := usecase.NewSession(client, identity, h.recognizer, h.model, h.store, h.sessionConfig, h.logger)
		if err := session.Run(context.Background()); err != nil {
			h.logger.Error("Session ended with error",
				zap.String("user", identity.Email),
				zap.Error(err))
		}
	}()

	return nil
}

// HandleTestText serves a text-only endpoint that feeds typed transcripts
// straight to the advisory dispatcher, bypassing speech recognition.
func (h *Handler) HandleTestText(c echo.Context, identity entities.Identity) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := newClient(h.hub, conn, identity, h.logger)
	h.hub.register <- client
	go client.writePump()

	go func() {
		defer func() {
			client.Close()
			h.hub.unregister <- client
		}()

		conversation := entities.NewConversation(h.sessionConfig.SystemInstruction, h.sessionConfig.Acknowledgment)
		dispatcher := usecase.NewDispatcher(h.model, conversation, client, h.logger)

		for {
			transcript, err := client.ReadText()
			if err != nil {
				h.logger.Info("Test text connection closing", zap.Error(err))
				return
			}
			if err := dispatcher.Dispatch(context.Background(), transcript); err != nil {
				h.logger.Error("Test text dispatch failed", zap.Error(err))
				return
			}
		}
	}()

	return nil
}
