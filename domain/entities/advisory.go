package entities

import (
	"fmt"

	"github.com/google/uuid"
)

// ResponseType identifies the kind of message sent to the client.
type ResponseType string

const (
	ResponseTranscript ResponseType = "TRANSCRIPT"
	ResponseInterim    ResponseType = "INTERIM"
	ResponseFact       ResponseType = "FACT"
	ResponseTip        ResponseType = "TIP"
	ResponseAnswer     ResponseType = "ANSWER"
	ResponseEmpty      ResponseType = "EMPTY"
)

// TipPrefix is prepended to the short form of every tip.
const TipPrefix = "💡 "

// Tool names the model may invoke.
const (
	ToolExtractFact    = "extract_fact"
	ToolProvideTip     = "provide_tip"
	ToolAnswerQuestion = "answer_question"
)

// Envelope is the outbound message frame over the WebSocket connection.
// MessageID is set only for advisory variants (FACT/TIP/ANSWER) so the
// client can deduplicate and order them.
type Envelope struct {
	MessageID    string       `json:"message_id,omitempty"`
	ResponseType ResponseType `json:"response_type"`
	Payload      interface{}  `json:"payload,omitempty"`
}

// FactPayload carries a key fact extracted from the transcript.
// GCPService is only present for facts in the infrastructure category.
type FactPayload struct {
	Fact       string `json:"fact"`
	Category   string `json:"category"`
	GCPService string `json:"gcp_service,omitempty"`
}

// TipPayload carries a proactive tip in short and long form.
type TipPayload struct {
	Short string `json:"short"`
	Long  string `json:"long"`
}

// AnswerPayload carries an answer to a direct customer question.
type AnswerPayload struct {
	Question string `json:"question"`
	Short    string `json:"short"`
	Long     string `json:"long"`
}

// NewTranscriptEnvelope wraps a durable final transcript segment.
func NewTranscriptEnvelope(text string) Envelope {
	return Envelope{ResponseType: ResponseTranscript, Payload: text}
}

// NewInterimEnvelope wraps an ephemeral partial transcription hypothesis.
func NewInterimEnvelope(text string) Envelope {
	return Envelope{ResponseType: ResponseInterim, Payload: text}
}

// NewEmptyEnvelope signals that a turn produced no advisory, so the client
// can clear any pending-indicator state.
func NewEmptyEnvelope() Envelope {
	return Envelope{ResponseType: ResponseEmpty}
}

// NewFactEnvelope builds a FACT message with a fresh message id.
func NewFactEnvelope(p FactPayload) Envelope {
	return Envelope{
		MessageID:    uuid.NewString(),
		ResponseType: ResponseFact,
		Payload:      p,
	}
}

// NewTipEnvelope builds a TIP message, prefixing the short form.
func NewTipEnvelope(shortTip, longTip string) Envelope {
	return Envelope{
		MessageID:    uuid.NewString(),
		ResponseType: ResponseTip,
		Payload:      TipPayload{Short: TipPrefix + shortTip, Long: longTip},
	}
}

// NewAnswerEnvelope builds an ANSWER message with a fresh message id.
func NewAnswerEnvelope(p AnswerPayload) Envelope {
	return Envelope{
		MessageID:    uuid.NewString(),
		ResponseType: ResponseAnswer,
		Payload:      p,
	}
}

// EnvelopeFromToolCall maps a model tool invocation to a fully constructed
// advisory envelope. Every required argument is validated up front: a call
// with a missing argument or an unrecognized name yields an error and no
// envelope, never a partially filled message.
func EnvelopeFromToolCall(call ToolCall) (Envelope, error) {
	switch call.Name {
	case ToolExtractFact:
		fact, err := stringArg(call.Args, "fact")
		if err != nil {
			return Envelope{}, err
		}
		category, err := stringArg(call.Args, "category")
		if err != nil {
			return Envelope{}, err
		}
		payload := FactPayload{Fact: fact, Category: category}
		// The GCP equivalent only makes sense for infrastructure facts.
		if category == "infrastructure" {
			if service, ok := call.Args["gcp_service"].(string); ok {
				payload.GCPService = service
			}
		}
		return NewFactEnvelope(payload), nil

	case ToolProvideTip:
		shortTip, err := stringArg(call.Args, "short_tip")
		if err != nil {
			return Envelope{}, err
		}
		longTip, err := stringArg(call.Args, "long_tip")
		if err != nil {
			return Envelope{}, err
		}
		return NewTipEnvelope(shortTip, longTip), nil

	case ToolAnswerQuestion:
		question, err := stringArg(call.Args, "question")
		if err != nil {
			return Envelope{}, err
		}
		shortAnswer, err := stringArg(call.Args, "short_answer")
		if err != nil {
			return Envelope{}, err
		}
		longAnswer, err := stringArg(call.Args, "long_answer")
		if err != nil {
			return Envelope{}, err
		}
		return NewAnswerEnvelope(AnswerPayload{
			Question: question,
			Short:    shortAnswer,
			Long:     longAnswer,
		}), nil

	default:
		return Envelope{}, fmt.Errorf("unknown tool: %s", call.Name)
	}
}

func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return v, nil
}
