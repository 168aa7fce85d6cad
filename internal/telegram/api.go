package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// sender is the slice of the Bot API the front end uses. *tgbotapi.BotAPI
// satisfies it.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// NewAPI connects to Telegram with the bot token.
func NewAPI(botToken string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(botToken)
}
