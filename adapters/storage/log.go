package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/domain/repositories"
)

// LogTranscriptStore is a placeholder store for local development. It only
// logs the transcript summary.
type LogTranscriptStore struct {
	logger *zap.Logger
}

// NewLogTranscriptStore creates a log-only transcript store.
func NewLogTranscriptStore(logger *zap.Logger) repositories.TranscriptStore {
	return &LogTranscriptStore{logger: logger}
}

// Store implements repositories.TranscriptStore.
func (s *LogTranscriptStore) Store(ctx context.Context, identity entities.Identity, lines []string) error {
	s.logger.Info("Transcript discarded (log store)",
		zap.String("user", identity.Email),
		zap.Int("lines", len(lines)))
	return nil
}
