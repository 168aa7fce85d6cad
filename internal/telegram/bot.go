// Package telegram serves the tutor to a single Telegram user.
package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dutch-tutor/internal/locale"
	"dutch-tutor/internal/tutor"
)

const (
	clearYesCmd = "clear_yes"
	clearNoCmd  = "clear_no"
	langPrefix  = "lang:"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	s       sender
	tutor   *tutor.Tutor
	ownerID int64
	logger  *zap.Logger

	wg sync.WaitGroup
}

// New returns a bot that answers ownerID only. api may be nil in tests that
// drive serve directly.
func New(api *tgbotapi.BotAPI, s sender, t *tutor.Tutor, ownerID int64, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{api: api, s: s, tutor: t, ownerID: ownerID, logger: logger}
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()
	b.logger.Info("telegram bot started", zap.String("username", b.api.Self.UserName))
	b.serve(ctx, updates)
}

// serve dispatches updates and waits for in-flight handlers before returning.
func (b *Bot) serve(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if !b.isOwner(msg.From) {
			return
		}
		if msg.IsCommand() {
			b.handleCommand(msg)
			return
		}
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.handleIncomingMessage(ctx, msg)
		}()
	case update.CallbackQuery != nil:
		if !b.isOwner(update.CallbackQuery.From) {
			return
		}
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) isOwner(u *tgbotapi.User) bool {
	if u == nil {
		return false
	}
	if u.ID != b.ownerID {
		b.logger.Info("ignoring message from another user",
			zap.Int64("user_id", u.ID), zap.String("username", u.UserName))
		return false
	}
	return true
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	b.logger.Debug("incoming message", zap.Int64("chat_id", msg.Chat.ID), zap.Int("length", len(msg.Text)))
	if _, err := b.tutor.Submit(ctx, msg.Text); err != nil {
		if errors.Is(err, tutor.ErrBusy) {
			b.sendMessage(msg.Chat.ID, b.texts().Busy)
			return
		}
		b.logger.Debug("exchange not completed", zap.Error(err))
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	texts := b.texts()
	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, b.tutor.Welcome())
		if info := b.tutor.SessionInfo(); info != "" {
			b.sendMessage(msg.Chat.ID, info)
		}
	case "progress":
		b.sendMessage(msg.Chat.ID, b.tutor.ProgressText())
	case "clear":
		out := tgbotapi.NewMessage(msg.Chat.ID, b.tutor.ClearConfirmation())
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(texts.ClearYes, clearYesCmd),
				tgbotapi.NewInlineKeyboardButtonData(texts.ClearNo, clearNoCmd),
			),
		)
		if _, err := b.s.Send(out); err != nil {
			b.logger.Warn("failed to send clear confirmation", zap.Error(err))
		}
	case "lang":
		arg := strings.TrimSpace(msg.CommandArguments())
		if arg == "" {
			b.sendLanguagePicker(msg.Chat.ID)
			return
		}
		b.switchLanguage(msg.Chat.ID, arg)
	case "reset":
		b.tutor.Reset()
		b.sendMessage(msg.Chat.ID, texts.ContextReset)
	default:
		b.sendMessage(msg.Chat.ID, "/start /progress /clear /lang /reset")
	}
}

func (b *Bot) sendLanguagePicker(chatID int64) {
	var row []tgbotapi.InlineKeyboardButton
	for _, l := range locale.Supported() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(l.DisplayName(), langPrefix+string(l)))
	}
	out := tgbotapi.NewMessage(chatID, string(b.tutor.Language()))
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	if _, err := b.s.Send(out); err != nil {
		b.logger.Warn("failed to send language picker", zap.Error(err))
	}
}

func (b *Bot) switchLanguage(chatID int64, name string) {
	l, ok := locale.Parse(name)
	if !ok {
		b.sendMessage(chatID, "Unsupported language: "+name)
		return
	}
	if _, err := b.tutor.SetLanguage(l); err != nil {
		b.logger.Warn("language switch failed", zap.Error(err))
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Debug("failed to answer callback", zap.Error(err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	switch {
	case cb.Data == clearYesCmd:
		if err := b.tutor.ClearProgress(); err != nil {
			b.logger.Error("failed to clear progress", zap.Error(err))
		}
	case cb.Data == clearNoCmd:
		b.sendMessage(chatID, b.texts().ClearCanceled)
	case strings.HasPrefix(cb.Data, langPrefix):
		b.switchLanguage(chatID, strings.TrimPrefix(cb.Data, langPrefix))
	}
}

// SendReminder nudges the owner when no session happened today.
func (b *Bot) SendReminder() {
	text, ok := b.tutor.Reminder()
	if !ok {
		b.logger.Debug("reminder skipped, already practiced today")
		return
	}
	b.sendMessage(b.ownerID, text)
}

func (b *Bot) texts() locale.Texts {
	return locale.TextsFor(b.tutor.Language())
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if _, err := b.s.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("failed to send message", zap.Error(err))
	}
}
