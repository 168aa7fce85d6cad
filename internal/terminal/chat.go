// Package terminal is the interactive command-line front end.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"dutch-tutor/internal/kvstore"
	"dutch-tutor/internal/locale"
	"dutch-tutor/internal/tutor"
)

const helpText = `Commands:
  /help              Show this help
  /progress          Show your learning progress
  /clear             Clear all learning progress
  /lang [name]       Show or switch the explanation language
  /key <credential>  Set the API key
  /reset             Forget the current conversation
  /quit              Exit`

// LineReader reads one line of input.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// Chat is the read-eval-print loop around a Tutor.
type Chat struct {
	tutor  *tutor.Tutor
	kv     kvstore.Store
	in     LineReader
	out    io.Writer
	logger *zap.Logger
}

func NewChat(t *tutor.Tutor, kv kvstore.Store, in LineReader, out io.Writer, logger *zap.Logger) *Chat {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chat{tutor: t, kv: kv, in: in, out: out, logger: logger}
}

// Run greets the learner and serves input until /quit, EOF or ctx is done.
func (c *Chat) Run(ctx context.Context) error {
	c.greet()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		input, err := c.in.Prompt(promptStyle.Render("jij> "))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(c.out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if !c.handleCommand(input) {
				return nil
			}
			continue
		}
		if _, err := c.tutor.Submit(ctx, input); err != nil {
			if errors.Is(err, tutor.ErrBusy) {
				c.status(locale.TextsFor(c.tutor.Language()).Busy)
			}
			c.logger.Debug("exchange not completed", zap.Error(err))
		}
	}
}

func (c *Chat) greet() {
	fmt.Fprintln(c.out, teacherStyle.Render("Leraar:"))
	fmt.Fprintln(c.out, c.tutor.Welcome())
	if info := c.tutor.SessionInfo(); info != "" {
		c.status(info)
	}
	c.status("Type /help for commands.")
}

// handleCommand runs a slash command and reports whether the loop continues.
func (c *Chat) handleCommand(input string) bool {
	fields := strings.Fields(input)
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	texts := locale.TextsFor(c.tutor.Language())

	switch cmd {
	case "/quit", "/q", "/exit":
		return false
	case "/help", "/h":
		fmt.Fprintln(c.out, helpText)
	case "/progress", "/p":
		fmt.Fprintln(c.out, c.tutor.ProgressText())
	case "/clear":
		answer, err := c.in.Prompt(c.tutor.ClearConfirmation() + " [y/N] ")
		if err != nil || !isYes(answer) {
			c.status(texts.ClearCanceled)
			return true
		}
		if err := c.tutor.ClearProgress(); err != nil {
			c.errorf("%v", err)
		}
	case "/lang":
		c.switchLanguage(args)
	case "/key":
		c.setKey(args)
	case "/reset":
		c.tutor.Reset()
		c.status(texts.ContextReset)
	default:
		c.errorf("unknown command %s, type /help", cmd)
	}
	return true
}

func (c *Chat) switchLanguage(args []string) {
	if len(args) == 0 {
		names := make([]string, 0, len(locale.Supported()))
		for _, l := range locale.Supported() {
			names = append(names, string(l))
		}
		c.status(fmt.Sprintf("Current: %s. Available: %s", c.tutor.Language(), strings.Join(names, ", ")))
		return
	}
	l, ok := locale.Parse(strings.Join(args, " "))
	if !ok {
		c.errorf("unsupported language %q", strings.Join(args, " "))
		return
	}
	if _, err := c.tutor.SetLanguage(l); err != nil {
		c.errorf("%v", err)
	}
}

func (c *Chat) setKey(args []string) {
	if len(args) != 1 {
		c.errorf("usage: /key <credential>")
		return
	}
	c.tutor.SetCredential(args[0])
	if err := c.kv.Set(kvstore.KeyCredential, args[0]); err != nil {
		c.logger.Warn("failed to persist credential", zap.Error(err))
	}
	c.status("API key saved.")
}

func (c *Chat) status(text string) {
	fmt.Fprintln(c.out, statusStyle.Render(text))
}

func (c *Chat) errorf(format string, args ...any) {
	fmt.Fprintln(c.out, errorStyle.Render(fmt.Sprintf(format, args...)))
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

// Input is a liner-backed LineReader with persistent history.
type Input struct {
	line        *liner.State
	historyFile string
}

// NewInput opens the terminal for line editing. historyFile may be empty.
func NewInput(historyFile string) *Input {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	in := &Input{line: line, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	return in
}

func (i *Input) Prompt(prompt string) (string, error) {
	input, err := i.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" && !strings.HasPrefix(input, "/key") {
		i.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history and restores the terminal.
func (i *Input) Close() error {
	if i.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(i.historyFile), 0o755); err == nil {
			if f, err := os.OpenFile(i.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
				_, _ = i.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	return i.line.Close()
}
