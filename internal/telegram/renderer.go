package telegram

import (
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dutch-tutor/internal/tutor"
)

// Renderer delivers tutor output to the owner's chat.
type Renderer struct {
	s         sender
	chatID    int64
	parseMode string
	logger    *zap.Logger
}

func NewRenderer(s sender, chatID int64, parseMode string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{s: s, chatID: chatID, parseMode: parseMode, logger: logger}
}

func (r *Renderer) Render(role tutor.Role, text string) {
	switch role {
	case tutor.RoleUser:
		// already visible in the chat
	case tutor.RoleAssistant:
		r.sendFormatted(text)
	default:
		r.sendPlain(text)
	}
}

// StartLoading shows "typing" and a thinking message; stop deletes the
// message.
func (r *Renderer) StartLoading(text string) func() {
	if _, err := r.s.Request(tgbotapi.NewChatAction(r.chatID, tgbotapi.ChatTyping)); err != nil {
		r.logger.Debug("chat action failed", zap.Error(err))
	}
	sent, err := r.s.Send(tgbotapi.NewMessage(r.chatID, text))
	if err != nil {
		r.logger.Warn("failed to send thinking message", zap.Error(err))
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if _, err := r.s.Request(tgbotapi.NewDeleteMessage(r.chatID, sent.MessageID)); err != nil {
				r.logger.Warn("failed to delete thinking message", zap.Error(err))
			}
		})
	}
}

// sendFormatted sends text with the configured parse mode. Model output is
// not guaranteed to be valid Telegram markup, so a rejected message is
// resent as plain text.
func (r *Renderer) sendFormatted(text string) {
	msg := tgbotapi.NewMessage(r.chatID, text)
	msg.ParseMode = r.parseMode
	_, err := r.s.Send(msg)
	if err == nil {
		return
	}
	if r.parseMode != "" && strings.Contains(err.Error(), "can't parse entities") {
		r.sendPlain(text)
		return
	}
	r.logger.Warn("failed to send message", zap.Error(err))
}

func (r *Renderer) sendPlain(text string) {
	if _, err := r.s.Send(tgbotapi.NewMessage(r.chatID, text)); err != nil {
		r.logger.Warn("failed to send message", zap.Error(err))
	}
}
