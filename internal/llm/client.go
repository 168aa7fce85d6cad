package llm

import (
	"context"
	"errors"
	"fmt"
)

// Turn speakers. The conversation window only ever holds these two.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Message struct {
	Role    string
	Content string
}

// Request is the provider-neutral chat completion request.
type Request struct {
	Instructions    string
	Turns           []Message
	NewMessage      string
	Temperature     float32
	MaxOutputTokens int
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client sends one request to a remote model. credential is passed through
// untouched; every failure is returned as a *Fault.
type Client interface {
	Generate(ctx context.Context, credential string, req Request) (Response, error)
}

// Fault is a failed remote call. StatusCode is zero when no HTTP status was
// received (transport failure, timeout, malformed reply).
type Fault struct {
	StatusCode int
	Message    string
	Err        error
}

func (f *Fault) Error() string {
	msg := f.Message
	if msg == "" {
		msg = "Unknown error"
	}
	if f.StatusCode == 0 {
		return "API error: " + msg
	}
	return fmt.Sprintf("API error: %d - %s", f.StatusCode, msg)
}

func (f *Fault) Unwrap() error { return f.Err }

// AsFault extracts the *Fault from err, wrapping foreign errors into one.
func AsFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return &Fault{Message: err.Error(), Err: err}
}

// ErrEmptyReply is wrapped into a Fault when a provider answers without text.
var ErrEmptyReply = errors.New("empty reply")

func emptyReply(provider string) *Fault {
	return &Fault{Message: provider + " returned no candidates", Err: ErrEmptyReply}
}

// Unavailable fails every call with Err. Commands that only read local
// state use it when no provider can be built.
type Unavailable struct{ Err error }

func (u Unavailable) Generate(context.Context, string, Request) (Response, error) {
	return Response{}, &Fault{Message: u.Err.Error(), Err: u.Err}
}
