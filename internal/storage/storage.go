package storage

import "time"

// Event is one completed exchange: the learner's message and the tutor's
// reply. Events are appended in chronological order.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	Language          string    `json:"language"`
	UserMessage       string    `json:"user_message"`
	AssistantResponse string    `json:"assistant_response"`
	Model             string    `json:"model,omitempty"`
}

// Recorder abstracts the exchange journal.
// LoadInteractions should return events in chronological order.
// AppendInteraction should atomically append a new event.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}
