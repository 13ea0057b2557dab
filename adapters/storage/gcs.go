package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/domain/repositories"
)

// GCSTranscriptStore persists finished session transcripts as JSON objects
// in a Cloud Storage bucket.
type GCSTranscriptStore struct {
	client *gcs.Client
	bucket string
	logger *zap.Logger
}

// NewGCSTranscriptStore creates a store writing to the named bucket.
func NewGCSTranscriptStore(ctx context.Context, bucket string, logger *zap.Logger) (*GCSTranscriptStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSTranscriptStore{client: client, bucket: bucket, logger: logger}, nil
}

type conversationDocument struct {
	User       string   `json:"user"`
	Transcript []string `json:"transcript"`
}

// Store uploads the transcript as
// conversation-<timestamp>-<sanitized-email>.json.
func (s *GCSTranscriptStore) Store(ctx context.Context, identity entities.Identity, lines []string) error {
	doc, err := json.MarshalIndent(conversationDocument{
		User:       identity.Email,
		Transcript: lines,
	}, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	name := objectName(identity.Email, time.Now())
	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(doc); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write conversation object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize conversation object: %w", err)
	}

	s.logger.Info("Conversation uploaded",
		zap.String("bucket", s.bucket),
		zap.String("object", name),
		zap.Int("lines", len(lines)))
	return nil
}

// Close releases the underlying storage client.
func (s *GCSTranscriptStore) Close() error {
	return s.client.Close()
}

func objectName(email string, at time.Time) string {
	if email == "" {
		email = "unknown-user"
	}
	sanitized := strings.NewReplacer("@", "_", ".", "_").Replace(email)
	return fmt.Sprintf("conversation-%s-%s.json", at.Format("20060102-150405"), sanitized)
}

var _ repositories.TranscriptStore = &GCSTranscriptStore{}
