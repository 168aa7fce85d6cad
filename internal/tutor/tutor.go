// Package tutor runs the conversation: it builds each request from the
// rolling history and the learner's progress, sends it, and folds the
// reply back into both.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"dutch-tutor/internal/history"
	"dutch-tutor/internal/kvstore"
	"dutch-tutor/internal/learning"
	"dutch-tutor/internal/llm"
	"dutch-tutor/internal/locale"
	"dutch-tutor/internal/storage"
)

var (
	// ErrBusy rejects a send while another exchange is in flight.
	ErrBusy = errors.New("an exchange is already in progress")
	// ErrMissingCredential rejects a send before any request is made.
	ErrMissingCredential = errors.New("no API credential configured")
)

const (
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 1500
	DefaultTimeout         = 60 * time.Second
)

type Options struct {
	Client   llm.Client
	Learning *learning.Store
	KV       kvstore.Store
	Renderer Renderer
	// Journal is optional.
	Journal storage.Recorder
	Logger  *zap.Logger

	Credential string
	// Language applies when no preference is stored yet.
	Language        locale.Language
	Temperature     float32
	MaxOutputTokens int
	// Timeout bounds each remote call; zero means DefaultTimeout.
	Timeout      time.Duration
	HistoryLimit int
	Now          func() time.Time
}

// Tutor is the single conversation owner of the process.
type Tutor struct {
	client   llm.Client
	store    *learning.Store
	kv       kvstore.Store
	renderer Renderer
	journal  storage.Recorder
	logger   *zap.Logger
	window   *history.Window

	temperature     float32
	maxOutputTokens int
	timeout         time.Duration
	now             func() time.Time

	mu         sync.RWMutex
	lang       locale.Language
	credential string
	// epoch changes on every window reset so a reply that arrives after a
	// reset is not appended to the fresh window.
	epoch uint64

	inFlight atomic.Bool
}

func New(opts Options) (*Tutor, error) {
	if opts.Client == nil {
		return nil, errors.New("tutor: llm client is required")
	}
	if opts.Learning == nil {
		return nil, errors.New("tutor: learning store is required")
	}
	if opts.KV == nil {
		return nil, errors.New("tutor: key-value store is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("tutor: renderer is required")
	}
	t := &Tutor{
		client:          opts.Client,
		store:           opts.Learning,
		kv:              opts.KV,
		renderer:        opts.Renderer,
		journal:         opts.Journal,
		logger:          opts.Logger,
		window:          history.NewWindow(opts.HistoryLimit),
		temperature:     opts.Temperature,
		maxOutputTokens: opts.MaxOutputTokens,
		timeout:         opts.Timeout,
		now:             opts.Now,
		credential:      strings.TrimSpace(opts.Credential),
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	if t.temperature == 0 {
		t.temperature = DefaultTemperature
	}
	if t.maxOutputTokens <= 0 {
		t.maxOutputTokens = DefaultMaxOutputTokens
	}
	if t.timeout <= 0 {
		t.timeout = DefaultTimeout
	}
	if t.now == nil {
		t.now = time.Now
	}
	t.lang = t.loadLanguage(opts.Language)
	return t, nil
}

func (t *Tutor) loadLanguage(fallback locale.Language) locale.Language {
	if !fallback.Valid() {
		fallback = locale.Default
	}
	raw, ok, err := t.kv.Get(kvstore.KeyLanguage)
	if err != nil {
		t.logger.Warn("language preference unreadable", zap.Error(err))
		return fallback
	}
	if !ok {
		return fallback
	}
	l, ok := locale.Parse(raw)
	if !ok {
		t.logger.Warn("ignoring unknown stored language", zap.String("value", raw))
		return fallback
	}
	return l
}

func (t *Tutor) Language() locale.Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// SetLanguage switches the teaching language. A change is persisted, clears
// the conversation window and re-renders the welcome message. It reports
// whether the language actually changed.
func (t *Tutor) SetLanguage(l locale.Language) (bool, error) {
	if !l.Valid() {
		return false, fmt.Errorf("unsupported language %q", l)
	}
	t.mu.Lock()
	if t.lang == l {
		t.mu.Unlock()
		return false, nil
	}
	t.lang = l
	t.mu.Unlock()

	if err := t.kv.Set(kvstore.KeyLanguage, string(l)); err != nil {
		t.logger.Warn("failed to persist language preference", zap.Error(err))
	}
	t.Reset()
	t.logger.Info("teaching language changed", zap.String("language", string(l)))
	t.renderer.Render(RoleStatus, fmt.Sprintf(locale.TextsFor(l).LanguageSet, l.DisplayName()))
	t.renderer.Render(RoleAssistant, t.Welcome())
	return true, nil
}

func (t *Tutor) Credential() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.credential
}

func (t *Tutor) SetCredential(c string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credential = strings.TrimSpace(c)
}

// Busy reports whether an exchange is in flight; front ends disable their
// send control while it is true.
func (t *Tutor) Busy() bool { return t.inFlight.Load() }

// History returns a copy of the conversation window.
func (t *Tutor) History() []llm.Message { return t.window.Turns() }

// Learning exposes the learning state store.
func (t *Tutor) Learning() *learning.Store { return t.store }

// Reset clears the conversation window.
func (t *Tutor) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.epoch++
	t.window.Reset()
}

func (t *Tutor) currentEpoch() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.epoch
}

// BuildRequest assembles the outbound request: persona prelude, learning
// summary, the full window, then the new message. Nothing is truncated here.
func (t *Tutor) BuildRequest(userText, summary string, turns []llm.Message, lang locale.Language) llm.Request {
	return llm.Request{
		Instructions:    locale.TextsFor(lang).Persona + "\n\n" + summary,
		Turns:           append([]llm.Message(nil), turns...),
		NewMessage:      userText,
		Temperature:     t.temperature,
		MaxOutputTokens: t.maxOutputTokens,
	}
}

// SendAndAwait makes exactly one remote call under the configured timeout.
// Errors are always *llm.Fault.
func (t *Tutor) SendAndAwait(ctx context.Context, req llm.Request) (llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	resp, err := t.client.Generate(ctx, t.Credential(), req)
	if err != nil {
		return llm.Response{}, llm.AsFault(err)
	}
	return resp, nil
}

// appendIfEpoch appends the exchange only if no reset happened since epoch
// was read. The check and the append share t.mu with Reset.
func (t *Tutor) appendIfEpoch(epoch uint64, userText, modelText string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if epoch != t.epoch {
		return false
	}
	t.window.Append(userText, modelText)
	return true
}

// OnSuccess appends the completed exchange to the window.
func (t *Tutor) OnSuccess(userText, modelText string) {
	t.window.Append(userText, modelText)
}

// Submit runs one full exchange. Every failure is rendered to the learner
// before it is returned; none of them leaves partial state behind.
func (t *Tutor) Submit(ctx context.Context, text string) (llm.Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return llm.Response{}, nil
	}
	if !t.inFlight.CompareAndSwap(false, true) {
		return llm.Response{}, ErrBusy
	}
	defer t.inFlight.Store(false)

	lang := t.Language()
	texts := locale.TextsFor(lang)
	if t.Credential() == "" {
		t.renderer.Render(RoleError, texts.MissingCredential)
		return llm.Response{}, ErrMissingCredential
	}

	t.renderer.Render(RoleUser, text)
	epoch := t.currentEpoch()
	req := t.BuildRequest(text, t.store.SummarizeForPrompt(lang), t.window.Turns(), lang)

	started := t.now()
	resp, err := t.sendWithIndicator(ctx, req, texts.Thinking)
	if err != nil {
		fault := llm.AsFault(err)
		t.logger.Warn("exchange failed",
			zap.Int("status", fault.StatusCode),
			zap.String("message", fault.Message),
			zap.Duration("elapsed", t.now().Sub(started)))
		t.renderer.Render(RoleError, lang.Fault(fault.Error()))
		return llm.Response{}, fault
	}

	t.renderer.Render(RoleAssistant, resp.Content)

	now := t.now()
	t.store.RecordExchange(text, resp.Content, now)
	if err := t.store.Persist(); err != nil {
		t.logger.Warn("failed to persist learning record", zap.Error(err))
	}
	t.appendJournal(storage.Event{
		Timestamp:         now.UTC(),
		Language:          string(lang),
		UserMessage:       text,
		AssistantResponse: resp.Content,
		Model:             resp.Model,
	})
	t.appendIfEpoch(epoch, text, resp.Content)

	t.logger.Info("exchange completed",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
		zap.Int("total_tokens", resp.TotalTokens),
		zap.Int("window", t.window.Len()),
		zap.Duration("elapsed", now.Sub(started)))
	return resp, nil
}

func (t *Tutor) sendWithIndicator(ctx context.Context, req llm.Request, thinking string) (llm.Response, error) {
	stop := t.startLoading(thinking)
	defer stop()
	return t.SendAndAwait(ctx, req)
}

func (t *Tutor) startLoading(text string) func() {
	if l, ok := t.renderer.(Loader); ok {
		return l.StartLoading(text)
	}
	t.renderer.Render(RoleStatus, text)
	return func() {}
}

func (t *Tutor) appendJournal(ev storage.Event) {
	if t.journal == nil {
		return
	}
	if err := t.journal.AppendInteraction(ev); err != nil {
		t.logger.Warn("failed to journal exchange", zap.Error(err))
	}
}
