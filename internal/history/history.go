package history

import (
	"sync"

	"dutch-tutor/internal/llm"
)

// DefaultLimit keeps the ten most recent exchanges.
const DefaultLimit = 20

// Window is the rolling in-memory turn history sent with each request.
// It is never persisted.
type Window struct {
	mu    sync.RWMutex
	limit int
	turns []llm.Message
}

func NewWindow(limit int) *Window {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Window{limit: limit}
}

func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = nil
}

// Append adds one completed exchange and evicts the oldest turns past the limit.
func (w *Window) Append(userText, modelText string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = append(w.turns,
		llm.Message{Role: llm.RoleUser, Content: userText},
		llm.Message{Role: llm.RoleModel, Content: modelText},
	)
	if over := len(w.turns) - w.limit; over > 0 {
		w.turns = append([]llm.Message(nil), w.turns[over:]...)
	}
}

// Turns returns a copy of the window in chronological order.
func (w *Window) Turns() []llm.Message {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]llm.Message, len(w.turns))
	copy(out, w.turns)
	return out
}

func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.turns)
}
