package repositories

import (
	"context"

	"github.com/eldanielo/ceassist/domain/entities"
)

// AdvisoryModel abstracts the generative model behind the dispatcher. One
// call is one round trip: the full ordered conversation goes in, the model's
// reply (text plus tool invocations) comes out.
type AdvisoryModel interface {
	Advise(ctx context.Context, turns []entities.Turn) (*entities.ModelReply, error)
}
