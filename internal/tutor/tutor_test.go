package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"dutch-tutor/internal/kvstore"
	"dutch-tutor/internal/learning"
	"dutch-tutor/internal/llm"
	"dutch-tutor/internal/locale"
	"dutch-tutor/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// started by an init in the genai dependency chain
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

var fixedNow = time.Date(2024, time.June, 3, 14, 0, 0, 0, time.UTC)

type rendered struct {
	role Role
	text string
}

type fakeRenderer struct {
	mu      sync.Mutex
	lines   []rendered
	started int
	stopped int
}

func (r *fakeRenderer) Render(role Role, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, rendered{role, text})
}

func (r *fakeRenderer) StartLoading(text string) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.stopped++
	}
}

func (r *fakeRenderer) byRole(role Role) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, l := range r.lines {
		if l.role == role {
			out = append(out, l.text)
		}
	}
	return out
}

type fakeLLM struct {
	mu         sync.Mutex
	reqs       []llm.Request
	creds      []string
	resp       llm.Response
	err        error
	block      chan struct{}
	entered    chan struct{}
	hasTimeout bool
}

func (f *fakeLLM) Generate(ctx context.Context, credential string, req llm.Request) (llm.Response, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.creds = append(f.creds, credential)
	_, f.hasTimeout = ctx.Deadline()
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		}
	}
	if f.err != nil {
		return llm.Response{}, f.err
	}
	if f.resp.Content == "" {
		return llm.Response{Content: fmt.Sprintf("antwoord %d", len(f.reqs)), Model: "fake"}, nil
	}
	return f.resp, nil
}

type memJournal struct{ events []storage.Event }

func (j *memJournal) AppendInteraction(ev storage.Event) error {
	j.events = append(j.events, ev)
	return nil
}
func (j *memJournal) LoadInteractions() ([]storage.Event, error) { return j.events, nil }

type fixture struct {
	tutor    *Tutor
	client   *fakeLLM
	renderer *fakeRenderer
	kv       *kvstore.MemoryStore
	store    *learning.Store
	journal  *memJournal
}

func newFixture(t *testing.T, client *fakeLLM, credential string) *fixture {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	store := learning.NewStore(kv, learning.WithLocation(time.UTC), learning.WithClock(func() time.Time { return fixedNow }))
	store.Load()
	r := &fakeRenderer{}
	j := &memJournal{}
	tu, err := New(Options{
		Client:     client,
		Learning:   store,
		KV:         kv,
		Renderer:   r,
		Journal:    j,
		Logger:     zaptest.NewLogger(t),
		Credential: credential,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return &fixture{tutor: tu, client: client, renderer: r, kv: kv, store: store, journal: j}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
	_, err = New(Options{Client: &fakeLLM{}})
	assert.Error(t, err)
}

func TestBuildRequest(t *testing.T) {
	f := newFixture(t, &fakeLLM{}, "key")
	turns := []llm.Message{{Role: llm.RoleUser, Content: "a"}, {Role: llm.RoleModel, Content: "b"}}
	req := f.tutor.BuildRequest("new", "SUMMARY", turns, locale.Spanish)

	assert.True(t, strings.HasPrefix(req.Instructions, locale.TextsFor(locale.Spanish).Persona))
	assert.True(t, strings.HasSuffix(req.Instructions, "SUMMARY"))
	assert.Equal(t, turns, req.Turns)
	assert.Equal(t, "new", req.NewMessage)
	assert.InDelta(t, DefaultTemperature, req.Temperature, 1e-6)
	assert.Equal(t, DefaultMaxOutputTokens, req.MaxOutputTokens)

	turns[0].Content = "mutated"
	assert.Equal(t, "a", req.Turns[0].Content, "request must not alias the window")
}

func TestSubmit_Success(t *testing.T) {
	client := &fakeLLM{resp: llm.Response{Content: "Een, twee, drie zijn getallen.", Model: "fake"}}
	f := newFixture(t, client, "key")

	resp, err := f.tutor.Submit(context.Background(), "  How do I say numbers?  ")
	require.NoError(t, err)
	assert.Equal(t, "Een, twee, drie zijn getallen.", resp.Content)

	require.Len(t, client.reqs, 1)
	assert.Equal(t, "key", client.creds[0])
	assert.True(t, client.hasTimeout)
	req := client.reqs[0]
	assert.Equal(t, "How do I say numbers?", req.NewMessage)
	assert.Empty(t, req.Turns)
	assert.Contains(t, req.Instructions, locale.TextsFor(locale.English).NewStudent)

	assert.Equal(t, []string{"How do I say numbers?"}, f.renderer.byRole(RoleUser))
	assert.Equal(t, []string{"Een, twee, drie zijn getallen."}, f.renderer.byRole(RoleAssistant))
	assert.Equal(t, 1, f.renderer.started)
	assert.Equal(t, 1, f.renderer.stopped)

	hist := f.tutor.History()
	require.Len(t, hist, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "How do I say numbers?"}, hist[0])
	assert.Equal(t, llm.RoleModel, hist[1].Role)

	rec := f.store.Snapshot()
	assert.Equal(t, 2, rec.TotalMessageCount)
	assert.Equal(t, []string{"numbers"}, rec.Topics)
	assert.Contains(t, rec.Vocabulary, "getallen")

	_, ok, err := f.kv.Get(kvstore.KeyLearningRecord)
	require.NoError(t, err)
	assert.True(t, ok, "record must be persisted")

	require.Len(t, f.journal.events, 1)
	assert.Equal(t, "English", f.journal.events[0].Language)
	assert.False(t, f.tutor.Busy())
}

func TestSubmit_SecondRequestCarriesHistoryAndSummary(t *testing.T) {
	client := &fakeLLM{}
	f := newFixture(t, client, "key")
	_, err := f.tutor.Submit(context.Background(), "first about food")
	require.NoError(t, err)
	_, err = f.tutor.Submit(context.Background(), "second")
	require.NoError(t, err)

	require.Len(t, client.reqs, 2)
	second := client.reqs[1]
	require.Len(t, second.Turns, 2)
	assert.Equal(t, "first about food", second.Turns[0].Content)
	assert.Equal(t, "antwoord 1", second.Turns[1].Content)
	assert.Contains(t, second.Instructions, "STUDENT CONTEXT:")
	assert.Contains(t, second.Instructions, "Recently studied topics: food")
}

func TestSubmit_RemoteFaultLeavesStateUntouched(t *testing.T) {
	client := &fakeLLM{}
	f := newFixture(t, client, "key")
	_, err := f.tutor.Submit(context.Background(), "warm up")
	require.NoError(t, err)

	before := f.store.Snapshot()
	histBefore := f.tutor.History()
	rawBefore, _, _ := f.kv.Get(kvstore.KeyLearningRecord)
	errorsBefore := len(f.renderer.byRole(RoleError))

	client.err = &llm.Fault{StatusCode: 401, Message: "API key not valid"}
	_, err = f.tutor.Submit(context.Background(), "numbers please")
	require.Error(t, err)
	var fault *llm.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 401, fault.StatusCode)

	assert.Equal(t, histBefore, f.tutor.History())
	assert.Equal(t, before, f.store.Snapshot())
	rawAfter, _, _ := f.kv.Get(kvstore.KeyLearningRecord)
	assert.Equal(t, rawBefore, rawAfter)
	assert.Len(t, f.journal.events, 1)

	errs := f.renderer.byRole(RoleError)
	require.Len(t, errs, errorsBefore+1)
	assert.Equal(t, "Error: API error: 401 - API key not valid. Please check your API key and try again.", errs[len(errs)-1])
	assert.Equal(t, f.renderer.started, f.renderer.stopped, "indicator released on failure")
	assert.False(t, f.tutor.Busy(), "send control restored")
}

func TestSubmit_ForeignErrorBecomesFault(t *testing.T) {
	f := newFixture(t, &fakeLLM{err: errors.New("connection refused")}, "key")
	_, err := f.tutor.Submit(context.Background(), "hallo")
	var fault *llm.Fault
	require.ErrorAs(t, err, &fault)
	assert.Zero(t, fault.StatusCode)
	assert.Contains(t, f.renderer.byRole(RoleError)[0], "connection refused")
}

func TestSubmit_MissingCredential(t *testing.T) {
	client := &fakeLLM{}
	f := newFixture(t, client, "")
	f.tutor.lang = locale.Spanish

	_, err := f.tutor.Submit(context.Background(), "hola")
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Empty(t, client.reqs)
	assert.Equal(t, []string{locale.TextsFor(locale.Spanish).MissingCredential}, f.renderer.byRole(RoleError))
	assert.Empty(t, f.renderer.byRole(RoleUser))
	assert.Zero(t, f.store.Snapshot().TotalMessageCount)
	assert.False(t, f.tutor.Busy())

	f.tutor.SetCredential("  now-set  ")
	assert.Equal(t, "now-set", f.tutor.Credential())
	_, err = f.tutor.Submit(context.Background(), "hola")
	assert.NoError(t, err)
}

func TestSubmit_EmptyInputIsIgnored(t *testing.T) {
	client := &fakeLLM{}
	f := newFixture(t, client, "key")
	_, err := f.tutor.Submit(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Empty(t, client.reqs)
	assert.Empty(t, f.renderer.lines)
}

func TestSubmit_RejectsWhileInFlight(t *testing.T) {
	client := &fakeLLM{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	f := newFixture(t, client, "key")

	done := make(chan error, 1)
	go func() {
		_, err := f.tutor.Submit(context.Background(), "first")
		done <- err
	}()
	<-client.entered
	assert.True(t, f.tutor.Busy())

	_, err := f.tutor.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(client.block)
	require.NoError(t, <-done)
	assert.False(t, f.tutor.Busy())
	assert.Len(t, client.reqs, 1)
	assert.Len(t, f.tutor.History(), 2)
}

func TestSubmit_TimeoutIsAFault(t *testing.T) {
	client := &fakeLLM{block: make(chan struct{})}
	f := newFixture(t, client, "key")
	f.tutor.timeout = 20 * time.Millisecond

	_, err := f.tutor.Submit(context.Background(), "slow")
	var fault *llm.Fault
	require.ErrorAs(t, err, &fault)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, f.tutor.History())
	assert.Equal(t, 1, f.renderer.stopped)
}

func TestAppendIfEpochRejectsStaleExchange(t *testing.T) {
	f := newFixture(t, &fakeLLM{}, "key")
	epoch := f.tutor.currentEpoch()
	assert.True(t, f.tutor.appendIfEpoch(epoch, "u1", "m1"))

	f.tutor.Reset()
	assert.False(t, f.tutor.appendIfEpoch(epoch, "old", "language"))
	assert.Empty(t, f.tutor.History())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.tutor.Reset()
		}()
		go func() {
			defer wg.Done()
			e := f.tutor.currentEpoch()
			f.tutor.appendIfEpoch(e, "u", "m")
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, len(f.tutor.History()), 20)
}

func TestOnSuccessEleventhExchangeEvictsOldest(t *testing.T) {
	f := newFixture(t, &fakeLLM{}, "key")
	for i := 1; i <= 11; i++ {
		f.tutor.OnSuccess(fmt.Sprintf("u%d", i), fmt.Sprintf("m%d", i))
	}
	h := f.tutor.History()
	require.Len(t, h, 20)
	assert.Equal(t, "u2", h[0].Content)
	assert.Equal(t, "m11", h[19].Content)
}

func TestSetLanguage(t *testing.T) {
	f := newFixture(t, &fakeLLM{}, "key")
	_, err := f.tutor.Submit(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, f.tutor.History(), 2)

	changed, err := f.tutor.SetLanguage(locale.Spanish)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, f.tutor.History(), "window cleared on language change")
	v, ok, _ := f.kv.Get(kvstore.KeyLanguage)
	assert.True(t, ok)
	assert.Equal(t, "Spanish", v)
	assistant := f.renderer.byRole(RoleAssistant)
	assert.Contains(t, assistant[len(assistant)-1], "¡Bienvenido de vuelta!")

	changed, err = f.tutor.SetLanguage(locale.Spanish)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = f.tutor.SetLanguage(locale.Language("Klingon"))
	assert.Error(t, err)
}

func TestStoredLanguageWinsOverDefault(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(kvstore.KeyLanguage, "Spanish"))
	store := learning.NewStore(kv)
	tu, err := New(Options{Client: &fakeLLM{}, Learning: store, KV: kv, Renderer: &fakeRenderer{}, Language: locale.English})
	require.NoError(t, err)
	assert.Equal(t, locale.Spanish, tu.Language())
}

func TestReplyAfterResetIsNotAppended(t *testing.T) {
	client := &fakeLLM{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	f := newFixture(t, client, "key")

	done := make(chan error, 1)
	go func() {
		_, err := f.tutor.Submit(context.Background(), "english question")
		done <- err
	}()
	<-client.entered
	_, err := f.tutor.SetLanguage(locale.Spanish)
	require.NoError(t, err)
	close(client.block)
	require.NoError(t, <-done)

	assert.Empty(t, f.tutor.History())
	assert.Equal(t, 2, f.store.Snapshot().TotalMessageCount, "learning record still counts the exchange")
}

func TestViews(t *testing.T) {
	f := newFixture(t, &fakeLLM{resp: llm.Response{Content: "Rood en blauw"}}, "key")
	assert.Equal(t, locale.TextsFor(locale.English).Welcome, f.tutor.Welcome())
	assert.Empty(t, f.tutor.SessionInfo())
	assert.Equal(t, locale.TextsFor(locale.English).ProgressEmpty, f.tutor.ProgressText())
	msg, ok := f.tutor.Reminder()
	assert.True(t, ok)
	assert.Contains(t, msg, "Never")

	_, err := f.tutor.Submit(context.Background(), "colors")
	require.NoError(t, err)

	assert.Contains(t, f.tutor.Welcome(), "Your last session was on 6/3/2024")
	assert.Equal(t, "Sessions: 1 | Last visit: 6/3/2024", f.tutor.SessionInfo())
	progress := f.tutor.ProgressText()
	assert.Contains(t, progress, "Sessions: 1")
	assert.Contains(t, progress, "Words: 2")
	assert.Contains(t, progress, "Messages: 2")
	assert.Contains(t, progress, "- colors")
	assert.Contains(t, progress, "Rood, blauw")
	_, ok = f.tutor.Reminder()
	assert.False(t, ok, "no reminder after practicing today")
}

func TestClearProgress(t *testing.T) {
	f := newFixture(t, &fakeLLM{}, "key")
	_, err := f.tutor.Submit(context.Background(), "numbers")
	require.NoError(t, err)

	require.NoError(t, f.tutor.ClearProgress())
	assert.Zero(t, f.store.Snapshot().TotalMessageCount)
	assistant := f.renderer.byRole(RoleAssistant)
	assert.Equal(t, locale.TextsFor(locale.English).ClearDone, assistant[len(assistant)-1])
	assert.NotEmpty(t, f.tutor.ClearConfirmation())
}

func TestPlainRendererGetsStatusLine(t *testing.T) {
	var lines []rendered
	kv := kvstore.NewMemoryStore()
	tu, err := New(Options{
		Client:     &fakeLLM{},
		Learning:   learning.NewStore(kv),
		KV:         kv,
		Renderer:   RendererFunc(func(role Role, text string) { lines = append(lines, rendered{role, text}) }),
		Credential: "k",
	})
	require.NoError(t, err)
	_, err = tu.Submit(context.Background(), "hi")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, RoleUser, lines[0].role)
	assert.Equal(t, RoleStatus, lines[1].role)
	assert.Equal(t, RoleAssistant, lines[2].role)
}
