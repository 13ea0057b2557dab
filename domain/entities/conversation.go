package entities

import "fmt"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ToolCall is a single structured tool invocation returned by the model.
type ToolCall struct {
	Name string
	Args map[string]interface{}
}

// ModelReply is the model's full response to one transcript turn: any
// free-form text plus the tool invocations it chose to make.
type ModelReply struct {
	Text      string
	ToolCalls []ToolCall
}

// Turn is one entry in the conversation log. Turns are never mutated after
// being appended.
type Turn struct {
	Role      Role
	Text      string
	ToolCalls []ToolCall
}

// Conversation is the ordered, append-only log of role-tagged turns for one
// connection. Turns strictly alternate starting with the seeded system
// instruction (as a user turn) and the seeded model acknowledgment. It is
// accessed only from the transcription loop's thread of control.
type Conversation struct {
	turns []Turn
}

// NewConversation seeds a conversation with the system instruction and the
// model's fixed acknowledgment.
func NewConversation(systemInstruction, acknowledgment string) *Conversation {
	return &Conversation{
		turns: []Turn{
			{Role: RoleUser, Text: systemInstruction},
			{Role: RoleModel, Text: acknowledgment},
		},
	}
}

// AppendUser appends a user turn. The previous turn must be a model turn.
func (c *Conversation) AppendUser(text string) error {
	if last := c.turns[len(c.turns)-1].Role; last != RoleModel {
		return fmt.Errorf("conversation out of order: user turn after %s turn", last)
	}
	c.turns = append(c.turns, Turn{Role: RoleUser, Text: text})
	return nil
}

// AppendModel appends the model's reply, including its tool-call record, so
// subsequent calls retain full context.
func (c *Conversation) AppendModel(reply ModelReply) error {
	if last := c.turns[len(c.turns)-1].Role; last != RoleUser {
		return fmt.Errorf("conversation out of order: model turn after %s turn", last)
	}
	c.turns = append(c.turns, Turn{Role: RoleModel, Text: reply.Text, ToolCalls: reply.ToolCalls})
	return nil
}

// Turns returns a copy of the conversation log.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns, including the two seeded ones.
func (c *Conversation) Len() int {
	return len(c.turns)
}
