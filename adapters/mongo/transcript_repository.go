package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/domain/repositories"
)

// TranscriptRepository persists finished session transcripts as documents in
// the conversations collection.
type TranscriptRepository struct {
	collection *mongo.Collection
}

// NewTranscriptRepository creates a MongoDB transcript store.
func NewTranscriptRepository(db *mongo.Database) repositories.TranscriptStore {
	return &TranscriptRepository{
		collection: db.Collection("conversations"),
	}
}

// Store implements repositories.TranscriptStore.
func (r *TranscriptRepository) Store(ctx context.Context, identity entities.Identity, lines []string) error {
	doc := bson.M{
		"user":       identity.Email,
		"transcript": lines,
		"created_at": time.Now(),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to store conversation: %w", err)
	}
	return nil
}
