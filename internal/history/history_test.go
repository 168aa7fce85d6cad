package history

import (
	"fmt"
	"testing"

	"dutch-tutor/internal/llm"
)

func TestWindowAppendTurnsReset(t *testing.T) {
	w := NewWindow(0)

	w.Append("hello", "hallo")
	msgs := w.Turns()
	if len(msgs) != 2 {
		t.Fatalf("unexpected length: %d", len(msgs))
	}
	if msgs[0].Role != llm.RoleUser || msgs[0].Content != "hello" {
		t.Fatalf("unexpected [0]: %+v", msgs[0])
	}
	if msgs[1].Role != llm.RoleModel || msgs[1].Content != "hallo" {
		t.Fatalf("unexpected [1]: %+v", msgs[1])
	}

	// Ensure copy semantics (modifying returned slice does not affect internal state)
	msgs[0] = llm.Message{Role: llm.RoleUser, Content: "mutated"}
	if w.Turns()[0].Content != "hello" {
		t.Fatalf("internal state mutated via returned slice")
	}

	w.Reset()
	if w.Len() != 0 {
		t.Fatalf("reset did not clear window")
	}
}

func TestWindowKeepsTenMostRecentExchanges(t *testing.T) {
	w := NewWindow(DefaultLimit)
	for i := 1; i <= 11; i++ {
		w.Append(fmt.Sprintf("u%d", i), fmt.Sprintf("m%d", i))
	}
	msgs := w.Turns()
	if len(msgs) != 20 {
		t.Fatalf("want 20 turns, got %d", len(msgs))
	}
	for i := 0; i < 10; i++ {
		u, m := msgs[2*i], msgs[2*i+1]
		if u.Role != llm.RoleUser || u.Content != fmt.Sprintf("u%d", i+2) {
			t.Fatalf("turn %d: unexpected user %+v", 2*i, u)
		}
		if m.Role != llm.RoleModel || m.Content != fmt.Sprintf("m%d", i+2) {
			t.Fatalf("turn %d: unexpected model %+v", 2*i+1, m)
		}
	}
}

func TestWindowCustomLimit(t *testing.T) {
	w := NewWindow(4)
	w.Append("a", "b")
	w.Append("c", "d")
	w.Append("e", "f")
	msgs := w.Turns()
	if len(msgs) != 4 || msgs[0].Content != "c" || msgs[3].Content != "f" {
		t.Fatalf("unexpected window: %+v", msgs)
	}
}
