package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/domain/repositories"
)

// Emitter delivers one envelope to the connected client.
type Emitter interface {
	Emit(env entities.Envelope) error
}

// Dispatcher sends a finalized transcript turn to the advisory model and
// maps its tool invocations to typed client messages. Dispatch is strictly
// sequential per connection: the transcription loop calls it synchronously
// and never overlaps two calls.
type Dispatcher struct {
	model        repositories.AdvisoryModel
	conversation *entities.Conversation
	emitter      Emitter
	logger       *zap.Logger
}

// NewDispatcher creates a dispatcher bound to one connection's conversation.
func NewDispatcher(
	model repositories.AdvisoryModel,
	conversation *entities.Conversation,
	emitter Emitter,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		model:        model,
		conversation: conversation,
		emitter:      emitter,
		logger:       logger,
	}
}

// Dispatch runs one advisory round trip for a final transcript segment.
// Model failures are swallowed here: the conversation continues without an
// advisory for that turn. The model turn is appended to the conversation
// whether or not anything was emitted, so later calls keep full context.
func (d *Dispatcher) Dispatch(ctx context.Context, transcript string) error {
	d.logger.Info("Dispatching transcript to advisory model",
		zap.String("transcript", transcript))

	if err := d.conversation.AppendUser(transcript); err != nil {
		return err
	}

	reply, err := d.model.Advise(ctx, d.conversation.Turns())
	if err != nil {
		d.logger.Error("Advisory model call failed", zap.Error(err))
		// Keep the turn log alternating so the next call stays coherent.
		return d.conversation.AppendModel(entities.ModelReply{})
	}

	emitted := false
	var emitErr error
	for _, call := range reply.ToolCalls {
		env, err := entities.EnvelopeFromToolCall(call)
		if err != nil {
			d.logger.Warn("Skipping tool invocation",
				zap.String("tool", call.Name),
				zap.Error(err))
			continue
		}
		if err := d.emitter.Emit(env); err != nil {
			emitErr = err
			break
		}
		emitted = true
	}

	// The model turn is recorded even when emission failed, so the turn log
	// keeps alternating and a later Dispatch on the same conversation works.
	if err := d.conversation.AppendModel(*reply); err != nil {
		return err
	}
	if emitErr != nil {
		return emitErr
	}

	if !emitted {
		d.logger.Info("Advisory model produced no advisory for this turn")
		return d.emitter.Emit(entities.NewEmptyEnvelope())
	}
	return nil
}
