package repositories

import (
	"context"

	"github.com/eldanielo/ceassist/domain/entities"
)

// TranscriptStore persists a finished session transcript. Store is
// fire-and-forget from the session's point of view: failures are logged by
// the caller, never propagated to the already-closed connection.
type TranscriptStore interface {
	Store(ctx context.Context, identity entities.Identity, lines []string) error
}
