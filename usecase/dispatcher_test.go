package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/eldanielo/ceassist/domain/entities"
)

func newTestDispatcher(model *scriptedModel) (*Dispatcher, *entities.Conversation, *captureEmitter) {
	conversation := entities.NewConversation("system instruction", "Understood. I am ready to assist.")
	emitter := &captureEmitter{}
	return NewDispatcher(model, conversation, emitter, zap.NewNop()), conversation, emitter
}

func TestDispatchEmitsPrefixedTip(t *testing.T) {
	model := &scriptedModel{replies: []*entities.ModelReply{{
		ToolCalls: []entities.ToolCall{{
			Name: entities.ToolProvideTip,
			Args: map[string]interface{}{
				"short_tip": "Mention committed use discounts",
				"long_tip":  "Committed use discounts reduce compute cost for steady workloads.",
			},
		}},
	}}}
	dispatcher, _, emitter := newTestDispatcher(model)

	if err := dispatcher.Dispatch(context.Background(), "our compute bill keeps growing"); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	tips := emitter.byType(entities.ResponseTip)
	if len(tips) != 1 {
		t.Fatalf("expected 1 TIP envelope, got %d (all: %v)", len(tips), emitter.all())
	}
	payload, ok := tips[0].Payload.(entities.TipPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", tips[0].Payload)
	}
	if !strings.HasPrefix(payload.Short, entities.TipPrefix) {
		t.Errorf("short tip missing prefix: %q", payload.Short)
	}
	if tips[0].MessageID == "" {
		t.Error("advisory envelope should carry a message id")
	}
	if len(emitter.byType(entities.ResponseEmpty)) != 0 {
		t.Error("EMPTY should not be sent when an advisory was emitted")
	}
}

func TestDispatchSkipsCallWithMissingArgument(t *testing.T) {
	model := &scriptedModel{replies: []*entities.ModelReply{{
		ToolCalls: []entities.ToolCall{{
			Name: entities.ToolProvideTip,
			Args: map[string]interface{}{"short_tip": "half a tip"},
		}},
	}}}
	dispatcher, conversation, emitter := newTestDispatcher(model)

	if err := dispatcher.Dispatch(context.Background(), "hello"); err != nil {
		t.Fatalf("Dispatch should not fail on a malformed invocation: %v", err)
	}

	if n := len(emitter.byType(entities.ResponseTip)); n != 0 {
		t.Errorf("malformed invocation produced %d TIP envelopes", n)
	}
	if n := len(emitter.byType(entities.ResponseEmpty)); n != 1 {
		t.Errorf("expected 1 EMPTY envelope after the turn, got %d", n)
	}
	if conversation.Len() != 4 {
		t.Errorf("conversation should still record the turn pair, got %d turns", conversation.Len())
	}
}

func TestDispatchUnknownToolSkipped(t *testing.T) {
	model := &scriptedModel{replies: []*entities.ModelReply{{
		ToolCalls: []entities.ToolCall{
			{Name: "google_search", Args: map[string]interface{}{"query": "pricing"}},
			{Name: entities.ToolProvideTip, Args: map[string]interface{}{
				"short_tip": "valid tip",
				"long_tip":  "the long form",
			}},
		},
	}}}
	dispatcher, _, emitter := newTestDispatcher(model)

	if err := dispatcher.Dispatch(context.Background(), "hello"); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if got := len(emitter.all()); got != 1 {
		t.Fatalf("expected exactly 1 envelope, got %d", got)
	}
	if emitter.all()[0].ResponseType != entities.ResponseTip {
		t.Errorf("expected the valid TIP to survive, got %s", emitter.all()[0].ResponseType)
	}
}

func TestDispatchNoToolCallsEmitsEmpty(t *testing.T) {
	model := &scriptedModel{replies: []*entities.ModelReply{{Text: "Noted."}}}
	dispatcher, _, emitter := newTestDispatcher(model)

	if err := dispatcher.Dispatch(context.Background(), "just small talk"); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	all := emitter.all()
	if len(all) != 1 || all[0].ResponseType != entities.ResponseEmpty {
		t.Fatalf("expected exactly one EMPTY envelope, got %v", all)
	}
	if all[0].MessageID != "" {
		t.Error("EMPTY envelope should not carry a message id")
	}
}

func TestDispatchModelFailureIsSwallowed(t *testing.T) {
	model := &scriptedModel{err: errors.New("model unavailable")}
	dispatcher, conversation, emitter := newTestDispatcher(model)

	if err := dispatcher.Dispatch(context.Background(), "hello"); err != nil {
		t.Fatalf("model failure should not propagate: %v", err)
	}

	if len(emitter.all()) != 0 {
		t.Errorf("no envelope expected on model failure, got %v", emitter.all())
	}
	// The turn pair is still recorded so the next call stays alternating.
	if conversation.Len() != 4 {
		t.Fatalf("expected 4 turns after failed round trip, got %d", conversation.Len())
	}
	if err := dispatcher.Dispatch(context.Background(), "still there?"); err != nil {
		t.Fatalf("follow-up Dispatch failed: %v", err)
	}
}

func TestDispatchMaintainsAlternatingTurns(t *testing.T) {
	model := &scriptedModel{}
	dispatcher, conversation, _ := newTestDispatcher(model)

	transcripts := []string{"first segment", "second segment", "third segment"}
	for _, text := range transcripts {
		if err := dispatcher.Dispatch(context.Background(), text); err != nil {
			t.Fatalf("Dispatch(%q) failed: %v", text, err)
		}
	}

	turns := conversation.Turns()
	if want := 2 + 2*len(transcripts); len(turns) != want {
		t.Fatalf("expected %d turns, got %d", want, len(turns))
	}
	for i, turn := range turns {
		want := entities.RoleUser
		if i%2 == 1 {
			want = entities.RoleModel
		}
		if turn.Role != want {
			t.Errorf("turn %d: role = %s, want %s", i, turn.Role, want)
		}
	}
}

type failingEmitter struct {
	err error
}

func (e *failingEmitter) Emit(env entities.Envelope) error { return e.err }

func TestDispatchEmitFailureKeepsTurnsAlternating(t *testing.T) {
	model := &scriptedModel{replies: []*entities.ModelReply{{
		ToolCalls: []entities.ToolCall{{
			Name: entities.ToolProvideTip,
			Args: map[string]interface{}{
				"short_tip": "a tip",
				"long_tip":  "the long form",
			},
		}},
	}}}
	conversation := entities.NewConversation("sys", "ack")
	emitErr := errors.New("send buffer gone")
	dispatcher := NewDispatcher(model, conversation, &failingEmitter{err: emitErr}, zap.NewNop())

	if err := dispatcher.Dispatch(context.Background(), "hello"); !errors.Is(err, emitErr) {
		t.Fatalf("Dispatch error = %v, want %v", err, emitErr)
	}

	// The failed round trip must still record its model turn, or the next
	// user turn would violate alternation.
	if conversation.Len() != 4 {
		t.Fatalf("expected 4 turns after failed emit, got %d", conversation.Len())
	}
	if err := conversation.AppendUser("next segment"); err != nil {
		t.Fatalf("conversation left out of order: %v", err)
	}
}

func TestDispatchFactOmitsServiceOutsideInfrastructure(t *testing.T) {
	model := &scriptedModel{replies: []*entities.ModelReply{{
		ToolCalls: []entities.ToolCall{{
			Name: entities.ToolExtractFact,
			Args: map[string]interface{}{
				"fact":        "team of 12 engineers",
				"category":    "other",
				"gcp_service": "Compute Engine",
			},
		}},
	}}}
	dispatcher, _, emitter := newTestDispatcher(model)

	if err := dispatcher.Dispatch(context.Background(), "we are a team of 12"); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	facts := emitter.byType(entities.ResponseFact)
	if len(facts) != 1 {
		t.Fatalf("expected 1 FACT envelope, got %d", len(facts))
	}
	payload := facts[0].Payload.(entities.FactPayload)
	if payload.GCPService != "" {
		t.Errorf("gcp_service should be dropped outside the infrastructure category, got %q", payload.GCPService)
	}
}
