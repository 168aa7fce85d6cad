package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"dutch-tutor/internal/tutor"
)

var (
	teacherStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#EA580C", Dark: "#FB923C"}).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"})

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}).
			Italic(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}).
			Bold(true)
)

// Renderer writes tutor output to a terminal. It implements tutor.Renderer
// and tutor.Loader.
type Renderer struct {
	mu       sync.Mutex
	out      io.Writer
	markdown *glamour.TermRenderer
}

// NewRenderer returns a renderer writing to out. With markdown set, replies
// are rendered through glamour; otherwise they are printed as is.
func NewRenderer(out io.Writer, markdown bool) *Renderer {
	r := &Renderer{out: out}
	if markdown {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			r.markdown = md
		}
	}
	return r
}

func (r *Renderer) Render(role tutor.Role, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch role {
	case tutor.RoleUser:
		// the prompt line already shows it
	case tutor.RoleAssistant:
		fmt.Fprintln(r.out, teacherStyle.Render("Leraar:"))
		fmt.Fprintln(r.out, r.renderMarkdown(text))
	case tutor.RoleError:
		fmt.Fprintln(r.out, errorStyle.Render(text))
	default:
		fmt.Fprintln(r.out, statusStyle.Render(text))
	}
}

func (r *Renderer) renderMarkdown(text string) string {
	if r.markdown == nil {
		return text
	}
	out, err := r.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// StartLoading prints text on the current line; stop erases it.
func (r *Renderer) StartLoading(text string) func() {
	r.mu.Lock()
	fmt.Fprint(r.out, statusStyle.Render(text))
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			fmt.Fprint(r.out, "\r\033[K")
		})
	}
}
