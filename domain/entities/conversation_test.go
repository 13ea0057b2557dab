package entities

import "testing"

func TestNewConversationSeedsInstructionPair(t *testing.T) {
	c := NewConversation("you are an assistant", "Understood. I am ready to assist.")

	turns := c.Turns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 seeded turns, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Text != "you are an assistant" {
		t.Errorf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].Role != RoleModel || turns[1].Text != "Understood. I am ready to assist." {
		t.Errorf("unexpected second turn: %+v", turns[1])
	}
}

func TestConversationEnforcesAlternation(t *testing.T) {
	c := NewConversation("sys", "ack")

	if err := c.AppendModel(ModelReply{Text: "early"}); err == nil {
		t.Error("model turn after model turn should be rejected")
	}
	if err := c.AppendUser("hello"); err != nil {
		t.Fatalf("AppendUser failed: %v", err)
	}
	if err := c.AppendUser("hello again"); err == nil {
		t.Error("user turn after user turn should be rejected")
	}
	if err := c.AppendModel(ModelReply{Text: "reply"}); err != nil {
		t.Fatalf("AppendModel failed: %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}
}

func TestConversationGrowsByTurnPairs(t *testing.T) {
	c := NewConversation("sys", "ack")

	for i := 0; i < 5; i++ {
		if err := c.AppendUser("segment"); err != nil {
			t.Fatalf("AppendUser %d failed: %v", i, err)
		}
		if err := c.AppendModel(ModelReply{}); err != nil {
			t.Fatalf("AppendModel %d failed: %v", i, err)
		}
		if want := 2 + 2*(i+1); c.Len() != want {
			t.Fatalf("after %d exchanges Len = %d, want %d", i+1, c.Len(), want)
		}
	}
}

func TestConversationTurnsReturnsCopy(t *testing.T) {
	c := NewConversation("sys", "ack")
	turns := c.Turns()
	turns[0].Text = "mutated"

	if c.Turns()[0].Text != "sys" {
		t.Error("Turns must return a copy, not the backing slice")
	}
}
