package learning

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"dutch-tutor/internal/kvstore"
	"dutch-tutor/internal/locale"
)

// Store owns the learner's Record and its persistence. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	// persistMu orders writes: whoever encodes last also writes last.
	persistMu sync.Mutex

	kv     kvstore.Store
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
	record Record
}

type Option func(*Store)

// WithLocation sets the time zone that decides calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithClock overrides time.Now for default-record creation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(kv kvstore.Store, opts ...Option) *Store {
	s := &Store{kv: kv, loc: time.Local, now: time.Now, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	s.record = NewRecord(s.now())
	return s
}

// Load restores the record from the key-value store. A missing value is the
// normal first-run state; an unreadable or malformed one is logged and
// replaced by the default record.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = NewRecord(s.now())
	raw, ok, err := s.kv.Get(kvstore.KeyLearningRecord)
	if err != nil {
		s.logger.Warn("learning record unreadable, starting fresh", zap.Error(err))
		return
	}
	if !ok {
		s.logger.Debug("no learning record stored yet")
		return
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Warn("learning record malformed, starting fresh", zap.Error(err))
		return
	}
	rec.normalize(s.now())
	s.record = rec
	s.logger.Debug("learning record loaded",
		zap.Int("sessions", len(rec.Sessions)),
		zap.Int("vocabulary", len(rec.Vocabulary)),
		zap.Int("topics", len(rec.Topics)))
}

// Persist writes the whole record under the fixed key.
func (s *Store) Persist() error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	s.mu.RLock()
	data, err := json.Marshal(s.record)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode learning record: %w", err)
	}
	if err := s.kv.Set(kvstore.KeyLearningRecord, string(data)); err != nil {
		return fmt.Errorf("store learning record: %w", err)
	}
	return nil
}

// Clear resets the record to the default with a new start date and persists it.
func (s *Store) Clear(now time.Time) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.mu.Lock()
	s.record = NewRecord(now)
	s.mu.Unlock()
	return s.persistLocked()
}

// RecordExchange folds one completed exchange into the record.
func (s *Store) RecordExchange(userText, modelText string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &s.record

	r.Vocabulary = appendDistinct(r.Vocabulary, extractWords(modelText)...)
	if len(r.Vocabulary) > VocabularyLimit {
		r.Vocabulary = tail(r.Vocabulary, VocabularyLimit)
	}
	r.Topics = appendDistinct(r.Topics, matchTopics(userText)...)

	r.TotalMessageCount += 2
	ts := now
	r.LastSession = &ts

	today := false
	for _, sess := range r.Sessions {
		if sameDay(sess.Date, now, s.loc) {
			today = true
			break
		}
	}
	if today {
		r.Sessions[len(r.Sessions)-1].MessageCount += 2
	} else {
		r.Sessions = append(r.Sessions, Session{Date: now, MessageCount: 2})
	}
}

// SummarizeForPrompt describes the learner's history for the model.
func (s *Store) SummarizeForPrompt(lang locale.Language) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := locale.TextsFor(lang)
	r := s.record

	if len(r.Sessions) == 0 {
		return t.NewStudent
	}

	var b strings.Builder
	b.WriteString(t.ContextHeader + "\n")
	fmt.Fprintf(&b, t.SessionsLine+"\n", len(r.Sessions))
	fmt.Fprintf(&b, t.LastSessionLine+"\n", s.formatLast(lang))
	if topics := tail(r.Topics, 5); len(topics) > 0 {
		fmt.Fprintf(&b, t.TopicsLine+"\n", strings.Join(topics, t.ListSeparator))
	}
	if vocab := tail(r.Vocabulary, 10); len(vocab) > 0 {
		fmt.Fprintf(&b, t.VocabularyLine+"\n", strings.Join(vocab, t.ListSeparator))
	}
	b.WriteString("\n" + t.ContextClosing)
	return b.String()
}

// LastSessionDate is the locale-formatted date of the last exchange, or the
// localized "never".
func (s *Store) LastSessionDate(lang locale.Language) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.formatLast(lang)
}

func (s *Store) formatLast(lang locale.Language) string {
	if s.record.LastSession == nil {
		return locale.TextsFor(lang).Never
	}
	return lang.FormatDate(s.record.LastSession.In(s.loc))
}

// HasSessionOn reports whether any session falls on the calendar day of t.
func (s *Store) HasSessionOn(t time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.record.Sessions {
		if sameDay(sess.Date, t, s.loc) {
			return true
		}
	}
	return false
}

// Snapshot returns a deep copy of the current record.
func (s *Store) Snapshot() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.clone()
}
