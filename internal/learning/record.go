package learning

import "time"

// VocabularyLimit bounds Record.Vocabulary; the oldest entries go first.
const VocabularyLimit = 100

// Session aggregates the exchanges of one calendar day.
type Session struct {
	Date         time.Time `json:"date"`
	MessageCount int       `json:"messages"`
}

// Record is the persisted learning progress of the single learner. The JSON
// names match the blob the browser version kept in localStorage.
type Record struct {
	Sessions          []Session  `json:"sessions"`
	Vocabulary        []string   `json:"vocabulary"`
	Topics            []string   `json:"topics"`
	TotalMessageCount int        `json:"totalMessages"`
	StartDate         time.Time  `json:"startDate"`
	LastSession       *time.Time `json:"lastSession"`
}

// NewRecord returns the empty record of a learner who started at now.
func NewRecord(now time.Time) Record {
	return Record{
		Sessions:   []Session{},
		Vocabulary: []string{},
		Topics:     []string{},
		StartDate:  now,
	}
}

func (r Record) clone() Record {
	out := r
	out.Sessions = append([]Session{}, r.Sessions...)
	out.Vocabulary = append([]string{}, r.Vocabulary...)
	out.Topics = append([]string{}, r.Topics...)
	if r.LastSession != nil {
		ts := *r.LastSession
		out.LastSession = &ts
	}
	return out
}

// normalize replaces nil slices left by a sparse stored value.
func (r *Record) normalize(now time.Time) {
	if r.Sessions == nil {
		r.Sessions = []Session{}
	}
	if r.Vocabulary == nil {
		r.Vocabulary = []string{}
	}
	if r.Topics == nil {
		r.Topics = []string{}
	}
	if r.StartDate.IsZero() {
		r.StartDate = now
	}
}

func tail(s []string, n int) []string {
	if len(s) <= n {
		return append([]string{}, s...)
	}
	return append([]string{}, s[len(s)-n:]...)
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
