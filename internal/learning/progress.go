package learning

import "time"

// Progress is the digest shown on the progress screen.
type Progress struct {
	Sessions         int
	Words            int
	Topics           int
	Messages         int
	StartDate        time.Time
	LastSession      *time.Time
	RecentTopics     []string
	RecentVocabulary []string
}

// Empty reports whether the learner has not started yet.
func (p Progress) Empty() bool {
	return p.Sessions == 0 && p.Messages == 0
}

func (s *Store) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.record.clone()
	return Progress{
		Sessions:         len(r.Sessions),
		Words:            len(r.Vocabulary),
		Topics:           len(r.Topics),
		Messages:         r.TotalMessageCount,
		StartDate:        r.StartDate,
		LastSession:      r.LastSession,
		RecentTopics:     tail(r.Topics, 10),
		RecentVocabulary: tail(r.Vocabulary, 20),
	}
}
