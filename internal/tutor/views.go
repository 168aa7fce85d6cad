package tutor

import (
	"fmt"
	"strings"

	"dutch-tutor/internal/locale"
)

// Welcome is the greeting shown at start and after a language switch.
func (t *Tutor) Welcome() string {
	lang := t.Language()
	texts := locale.TextsFor(lang)
	if t.store.Progress().Sessions > 0 {
		return fmt.Sprintf(texts.WelcomeBack, t.store.LastSessionDate(lang))
	}
	return texts.Welcome
}

// SessionInfo is the one-line status, empty before the first session.
func (t *Tutor) SessionInfo() string {
	lang := t.Language()
	p := t.store.Progress()
	if p.Sessions == 0 {
		return ""
	}
	return fmt.Sprintf(locale.TextsFor(lang).SessionInfo, p.Sessions, t.store.LastSessionDate(lang))
}

// ProgressText renders the progress screen as plain text.
func (t *Tutor) ProgressText() string {
	lang := t.Language()
	texts := locale.TextsFor(lang)
	p := t.store.Progress()
	if p.Empty() {
		return texts.ProgressEmpty
	}

	var b strings.Builder
	b.WriteString(texts.ProgressTitle + "\n")
	fmt.Fprintf(&b, "%s: %d\n", texts.ProgressSessions, p.Sessions)
	fmt.Fprintf(&b, "%s: %d\n", texts.ProgressWords, p.Words)
	fmt.Fprintf(&b, "%s: %d\n", texts.ProgressTopics, p.Topics)
	fmt.Fprintf(&b, "%s: %d\n", texts.ProgressMessages, p.Messages)
	fmt.Fprintf(&b, "%s: %s\n", texts.ProgressSince, lang.FormatDate(p.StartDate))
	if len(p.RecentTopics) > 0 {
		b.WriteString("\n" + texts.ProgressTopicsHead + "\n")
		for _, topic := range p.RecentTopics {
			b.WriteString("- " + topic + "\n")
		}
	}
	if len(p.RecentVocabulary) > 0 {
		b.WriteString("\n" + texts.ProgressVocabHead + "\n")
		b.WriteString(strings.Join(p.RecentVocabulary, texts.ListSeparator) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ClearConfirmation is the question a front end asks before ClearProgress.
func (t *Tutor) ClearConfirmation() string {
	return locale.TextsFor(t.Language()).ClearConfirm
}

// ClearProgress resets the learning record to defaults and persists it.
func (t *Tutor) ClearProgress() error {
	if err := t.store.Clear(t.now()); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	t.renderer.Render(RoleAssistant, locale.TextsFor(t.Language()).ClearDone)
	return nil
}

// Reminder is the study nudge text; ok is false when the learner already
// practiced today.
func (t *Tutor) Reminder() (string, bool) {
	now := t.now()
	if t.store.HasSessionOn(now) {
		return "", false
	}
	lang := t.Language()
	return fmt.Sprintf(locale.TextsFor(lang).Reminder, t.store.LastSessionDate(lang)), true
}
